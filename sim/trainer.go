package sim

import (
	"context"

	mapset "github.com/deckarep/golang-set"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/qlearn/errors"
	"github.com/teranos/qlearn/qtable"
)

// EpisodeResult summarises one training episode.
type EpisodeResult struct {
	Episode     int     `json:"episode"` // 1-based
	Steps       int     `json:"steps"`
	TotalReward float64 `json:"total_reward"`
	Epsilon     float64 `json:"epsilon"` // after the episode's last step
}

// CheckpointFunc is called after every checkpoint interval with the number
// of completed episodes. A returned error stops the run.
type CheckpointFunc func(ctx context.Context, episode int) error

// Trainer runs an agent through an environment.
type Trainer struct {
	agent           *qtable.Agent
	env             Environment
	logger          *zap.SugaredLogger
	runID           string
	checkpointEvery int
	checkpoint      CheckpointFunc
}

// TrainerOption configures a Trainer.
type TrainerOption func(*Trainer)

// WithLogger sets the trainer's logger. Nil keeps it silent.
func WithLogger(logger *zap.SugaredLogger) TrainerOption {
	return func(t *Trainer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithCheckpoint calls fn every `every` completed episodes. every <= 0
// disables checkpoints.
func WithCheckpoint(every int, fn CheckpointFunc) TrainerOption {
	return func(t *Trainer) {
		t.checkpointEvery = every
		t.checkpoint = fn
	}
}

// NewTrainer returns a trainer for agent on env. Every agent action must be
// one env understands.
func NewTrainer(agent *qtable.Agent, env Environment, opts ...TrainerOption) (*Trainer, error) {
	if agent == nil || env == nil {
		return nil, errors.NewConfigurationError("trainer needs an agent and an environment")
	}

	known := mapset.NewSet()
	for _, a := range env.Actions() {
		known.Add(a)
	}
	for _, a := range agent.Actions() {
		if !known.Contains(a) {
			return nil, errors.WithHintf(
				errors.NewConfigurationError("environment does not understand action %q", a),
				"environment actions: %v", env.Actions())
		}
	}

	t := &Trainer{
		agent:  agent,
		env:    env,
		logger: zap.NewNop().Sugar(),
		runID:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With("run_id", t.runID)
	return t, nil
}

// RunID identifies this trainer's run in logs.
func (t *Trainer) RunID() string { return t.runID }

// Run trains for the given number of episodes of at most maxSteps steps.
// Results for completed episodes are returned even when the run stops
// early on context cancellation or a checkpoint failure.
func (t *Trainer) Run(ctx context.Context, episodes, maxSteps int) ([]EpisodeResult, error) {
	if episodes < 0 {
		return nil, errors.NewInvalidRequestError("episodes must be >= 0, got %d", episodes)
	}
	if maxSteps <= 0 {
		return nil, errors.NewInvalidRequestError("max steps must be > 0, got %d", maxSteps)
	}

	t.logger.Infow("Training started",
		"episodes", episodes,
		"max_steps", maxSteps,
		"epsilon", t.agent.Epsilon())

	results := make([]EpisodeResult, 0, episodes)
	for ep := 1; ep <= episodes; ep++ {
		if err := ctx.Err(); err != nil {
			t.logger.Warnw("Training interrupted", "completed", len(results))
			return results, errors.Wrap(err, "training interrupted")
		}

		result := t.episode(ctx, ep, maxSteps)
		results = append(results, result)
		t.logger.Debugw("Episode finished",
			"episode", result.Episode,
			"steps", result.Steps,
			"reward", result.TotalReward,
			"epsilon", result.Epsilon)

		if t.checkpoint != nil && t.checkpointEvery > 0 && ep%t.checkpointEvery == 0 {
			if err := t.checkpoint(ctx, ep); err != nil {
				return results, errors.Wrapf(err, "checkpoint after episode %d", ep)
			}
		}
	}

	t.logger.Infow("Training finished",
		"episodes", len(results),
		"states", len(t.agent.States()),
		"epsilon", t.agent.Epsilon())
	return results, nil
}

// episode runs one episode. Cancellation mid-episode ends it early; Run
// notices on the next iteration.
func (t *Trainer) episode(ctx context.Context, number, maxSteps int) EpisodeResult {
	result := EpisodeResult{Episode: number}
	state := t.env.Reset()

	for result.Steps < maxSteps && ctx.Err() == nil {
		action := t.agent.ChooseAction(state)
		next, reward, done := t.env.Step(action)
		t.agent.Learn(state, action, reward, next)

		result.Steps++
		result.TotalReward += reward
		state = next
		if done {
			break
		}
	}

	result.Epsilon = t.agent.Epsilon()
	return result
}

// Summary aggregates a slice of results.
type Summary struct {
	Episodes     int
	TotalSteps   int
	MeanReward   float64
	BestReward   float64
	FinalEpsilon float64
}

// Summarize aggregates results. The zero Summary is returned for no results.
func Summarize(results []EpisodeResult) Summary {
	var s Summary
	if len(results) == 0 {
		return s
	}

	s.Episodes = len(results)
	s.BestReward = results[0].TotalReward
	var total float64
	for _, r := range results {
		s.TotalSteps += r.Steps
		total += r.TotalReward
		if r.TotalReward > s.BestReward {
			s.BestReward = r.TotalReward
		}
	}
	s.MeanReward = total / float64(len(results))
	s.FinalEpsilon = results[len(results)-1].Epsilon
	return s
}
