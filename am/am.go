// Package am loads the qlearn configuration ("I am"): agent
// hyperparameters, where the value table lives, and how training runs.
//
// Sources, lowest precedence first:
//
//	defaults (defaults.go)
//	/etc/qlearn/config.toml
//	~/.qlearn/am.toml
//	am.toml found by walking up from the working directory
//	QLEARN_* environment variables (QLEARN_AGENT_ALPHA=0.1)
package am

import (
	"github.com/jinzhu/copier"

	"github.com/teranos/qlearn/errors"
	"github.com/teranos/qlearn/qtable"
)

// Config represents the core qlearn configuration
type Config struct {
	Agent AgentConfig `mapstructure:"agent" toml:"agent"`
	Table TableConfig `mapstructure:"table" toml:"table"`
	Train TrainConfig `mapstructure:"train" toml:"train"`
	Sim   SimConfig   `mapstructure:"sim" toml:"sim"`
	Log   LogConfig   `mapstructure:"log" toml:"log"`
}

// AgentConfig configures the Q-learning agent
type AgentConfig struct {
	Actions []string `mapstructure:"actions" toml:"actions"` // ordered action set
	Epsilon float64  `mapstructure:"epsilon" toml:"epsilon"` // initial exploration rate
	Alpha   float64  `mapstructure:"alpha" toml:"alpha"`     // learning rate
	Gamma   float64  `mapstructure:"gamma" toml:"gamma"`     // discount factor
	Clamp   string   `mapstructure:"clamp" toml:"clamp"`     // "non_negative" or "none"
	Seed    int64    `mapstructure:"seed" toml:"seed"`       // 0 = seeded from the clock
}

// TableConfig configures value table persistence
type TableConfig struct {
	Path string `mapstructure:"path" toml:"path"` // .json, or .db/.sqlite/.sqlite3 for SQLite
}

// TrainConfig configures `qlearn train`
type TrainConfig struct {
	Episodes        int    `mapstructure:"episodes" toml:"episodes"`
	MaxSteps        int    `mapstructure:"max_steps" toml:"max_steps"`               // per episode
	CheckpointEvery int    `mapstructure:"checkpoint_every" toml:"checkpoint_every"` // episodes between saves, 0 = only at the end
	PlotPath        string `mapstructure:"plot_path" toml:"plot_path"`               // HTML reward chart, empty = none
}

// SimConfig configures the line-follow simulation
type SimConfig struct {
	TrackLength int     `mapstructure:"track_length" toml:"track_length"`
	CurveChange float64 `mapstructure:"curve_change" toml:"curve_change"` // per-step probability the curve changes
	Seed        int64   `mapstructure:"seed" toml:"seed"`
}

// LogConfig configures logging
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json"`
}

// DefaultFilePermissions is the mode of files written by WriteDefault
const DefaultFilePermissions = 0644

// Hyperparameters returns the agent's scalar settings.
func (c *Config) Hyperparameters() (qtable.Hyperparameters, error) {
	var hp qtable.Hyperparameters
	if err := copier.Copy(&hp, &c.Agent); err != nil {
		return hp, errors.Wrap(err, "failed to copy agent hyperparameters")
	}
	return hp, nil
}

// Actions returns the configured action set in order.
func (c *Config) Actions() []qtable.Action {
	actions := make([]qtable.Action, len(c.Agent.Actions))
	for i, a := range c.Agent.Actions {
		actions[i] = qtable.Action(a)
	}
	return actions
}

// AgentOptions returns the qtable options implied by the agent section.
func (c *Config) AgentOptions() ([]qtable.Option, error) {
	clamp, err := qtable.ParseClampPolicy(c.Agent.Clamp)
	if err != nil {
		return nil, err
	}
	opts := []qtable.Option{qtable.WithClamp(clamp)}
	if c.Agent.Seed != 0 {
		opts = append(opts, qtable.WithSeed(c.Agent.Seed))
	}
	return opts, nil
}

// NewAgent builds an agent from the configuration. extra options are
// applied after the configured ones.
func (c *Config) NewAgent(extra ...qtable.Option) (*qtable.Agent, error) {
	hp, err := c.Hyperparameters()
	if err != nil {
		return nil, err
	}
	opts, err := c.AgentOptions()
	if err != nil {
		return nil, err
	}
	return qtable.New(c.Actions(), hp.Epsilon, hp.Alpha, hp.Gamma, append(opts, extra...)...)
}
