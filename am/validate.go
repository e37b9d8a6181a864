package am

import (
	"github.com/teranos/qlearn/errors"
	"github.com/teranos/qlearn/qtable"
)

// Validate checks that the configuration can build an agent and run training.
// Every failure wraps errors.ErrConfiguration.
func (c *Config) Validate() error {
	if len(c.Agent.Actions) == 0 {
		return errors.WithHint(errors.NewConfigurationError("agent.actions cannot be empty"),
			`e.g. actions = ["forward", "left", "right"]`)
	}
	hp, err := c.Hyperparameters()
	if err != nil {
		return errors.Mark(err, errors.ErrConfiguration)
	}
	if err := hp.Validate(); err != nil {
		return errors.Wrap(err, "agent")
	}
	if _, err := qtable.ParseClampPolicy(c.Agent.Clamp); err != nil {
		return errors.Wrap(err, "agent.clamp")
	}

	if c.Table.Path == "" {
		return errors.NewConfigurationError("table.path cannot be empty")
	}

	// Episodes: 0 = load and save only, negative = invalid
	if c.Train.Episodes < 0 {
		return errors.NewConfigurationError("train.episodes must be >= 0, got %d", c.Train.Episodes)
	}
	if c.Train.MaxSteps <= 0 {
		return errors.NewConfigurationError("train.max_steps must be > 0, got %d", c.Train.MaxSteps)
	}
	if c.Train.CheckpointEvery < 0 {
		return errors.NewConfigurationError("train.checkpoint_every must be >= 0, got %d", c.Train.CheckpointEvery)
	}

	if c.Sim.TrackLength <= 0 {
		return errors.NewConfigurationError("sim.track_length must be > 0, got %d", c.Sim.TrackLength)
	}
	if c.Sim.CurveChange < 0 || c.Sim.CurveChange >= 1 {
		return errors.NewConfigurationError("sim.curve_change must be in [0, 1), got %v", c.Sim.CurveChange)
	}

	return nil
}
