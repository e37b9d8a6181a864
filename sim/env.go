// Package sim drives a qtable.Agent through an environment: a line-follow
// track that stands in for the robot, a trainer loop, and reward charts.
package sim

import (
	"math/rand"
	"time"

	"github.com/teranos/qlearn/errors"
	"github.com/teranos/qlearn/qtable"
)

// Environment is an episodic task with discrete states and actions.
type Environment interface {
	// Actions lists the actions Step understands.
	Actions() []qtable.Action
	// Reset starts a new episode and returns its first state.
	Reset() qtable.State
	// Step applies action and reports the next state, the reward and
	// whether the episode ended.
	Step(action qtable.Action) (next qtable.State, reward float64, done bool)
}

// Line-follow states: where the line is relative to the robot.
const (
	FarLeft  qtable.State = "far_left"
	Left     qtable.State = "left"
	Center   qtable.State = "center"
	Right    qtable.State = "right"
	FarRight qtable.State = "far_right"
	Lost     qtable.State = "lost"
)

// Line-follow actions.
const (
	Forward    qtable.Action = "forward"
	SteerLeft  qtable.Action = "left"
	SteerRight qtable.Action = "right"
)

// Line-follow rewards.
const (
	RewardCentered = 1.0
	RewardOnLine   = 0.5
	RewardLost     = -5.0
)

// lostOffset is the first offset at which the sensors no longer see the line
const lostOffset = 3

// LineFollowConfig configures a LineFollow track.
type LineFollowConfig struct {
	TrackLength int     // steps until the track ends
	CurveChange float64 // per-step probability that the curvature changes
	Seed        int64   // 0 = seeded from the clock
}

// LineFollow is a track whose line drifts sideways under the robot.
//
// The offset counts positions between the line and the robot, positive
// when the line is to the robot's right. Steering left moves the robot left
// (offset +1), steering right moves it right (offset -1), and the current
// curve adds its drift of -1, 0 or +1 every step.
type LineFollow struct {
	cfg      LineFollowConfig
	rng      *rand.Rand
	offset   int
	curve    int
	position int
}

// NewLineFollow validates cfg and returns a track ready for Reset.
func NewLineFollow(cfg LineFollowConfig) (*LineFollow, error) {
	if cfg.TrackLength <= 0 {
		return nil, errors.NewConfigurationError("track length must be > 0, got %d", cfg.TrackLength)
	}
	if cfg.CurveChange < 0 || cfg.CurveChange >= 1 {
		return nil, errors.NewConfigurationError("curve change must be in [0, 1), got %v", cfg.CurveChange)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &LineFollow{cfg: cfg, rng: rand.New(rand.NewSource(seed))}, nil
}

// Actions implements Environment.
func (l *LineFollow) Actions() []qtable.Action {
	return []qtable.Action{Forward, SteerLeft, SteerRight}
}

// Reset puts the robot centered on a straight line at the start of the track.
func (l *LineFollow) Reset() qtable.State {
	l.offset = 0
	l.curve = 0
	l.position = 0
	return Center
}

// Step implements Environment. Unknown actions drive forward.
func (l *LineFollow) Step(action qtable.Action) (qtable.State, float64, bool) {
	if l.cfg.CurveChange > 0 && l.rng.Float64() < l.cfg.CurveChange {
		l.curve = l.rng.Intn(3) - 1
	}

	switch action {
	case SteerLeft:
		l.offset++
	case SteerRight:
		l.offset--
	}
	l.offset += l.curve
	l.position++

	state := offsetState(l.offset)
	if state == Lost {
		return Lost, RewardLost, true
	}

	reward := RewardOnLine
	if action == Forward && state == Center {
		reward = RewardCentered
	}
	return state, reward, l.position >= l.cfg.TrackLength
}

// Offset returns the current line offset.
func (l *LineFollow) Offset() int { return l.offset }

func offsetState(offset int) qtable.State {
	switch {
	case offset <= -lostOffset || offset >= lostOffset:
		return Lost
	case offset == -2:
		return FarLeft
	case offset == -1:
		return Left
	case offset == 0:
		return Center
	case offset == 1:
		return Right
	default:
		return FarRight
	}
}
