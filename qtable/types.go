package qtable

import (
	"math"

	"github.com/teranos/qlearn/errors"
)

// State is an opaque, already-discretized observation symbol.
type State string

// Action is an opaque decision identifier from the agent's fixed action set.
type Action string

// Key addresses one cell of the value table.
type Key struct {
	State  State
	Action Action
}

// Entry is a stored (state, action, value) triple, the unit of persistence.
type Entry struct {
	State  State   `json:"state"`
	Action Action  `json:"action"`
	Value  float64 `json:"value"`
}

// Key returns the table key of the entry.
func (e Entry) Key() Key {
	return Key{State: e.State, Action: e.Action}
}

// ClampPolicy decides what Update does with negative results.
type ClampPolicy int

const (
	// ClampNonNegative stores max(0, v). Estimates behave as if returns can
	// never be negative, so large negative rewards are absorbed at zero.
	ClampNonNegative ClampPolicy = iota
	// ClampNone stores v unchanged (textbook Q-learning).
	ClampNone
)

// String returns the config spelling of the policy
func (p ClampPolicy) String() string {
	switch p {
	case ClampNonNegative:
		return "non_negative"
	case ClampNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseClampPolicy parses the config spelling produced by String.
func ParseClampPolicy(s string) (ClampPolicy, error) {
	switch s {
	case "non_negative", "":
		return ClampNonNegative, nil
	case "none":
		return ClampNone, nil
	default:
		return ClampNonNegative, errors.WithHint(
			errors.NewConfigurationError("unknown clamp policy %q", s),
			`use "non_negative" or "none"`)
	}
}

// apply stores max(0, v) under ClampNonNegative; NaN also becomes 0.
func (p ClampPolicy) apply(v float64) float64 {
	if p == ClampNonNegative && !(v >= 0) {
		return 0
	}
	return v
}

// Exploration decay schedule applied by every Learn call.
const (
	EpsilonDecay = 0.9995
	EpsilonFloor = 0.1
)

// Hyperparameters are the scalar settings an agent is built from.
type Hyperparameters struct {
	Epsilon float64 // exploration probability, decays towards EpsilonFloor
	Alpha   float64 // learning rate
	Gamma   float64 // discount factor
}

// Validate rejects non-finite or out-of-range values.
func (h Hyperparameters) Validate() error {
	if !finite(h.Epsilon) || h.Epsilon < 0 || h.Epsilon > 1 {
		return errors.NewConfigurationError("epsilon %v outside [0, 1]", h.Epsilon)
	}
	if !finite(h.Alpha) || h.Alpha <= 0 || h.Alpha > 1 {
		return errors.NewConfigurationError("alpha %v outside (0, 1]", h.Alpha)
	}
	if !finite(h.Gamma) || h.Gamma < 0 || h.Gamma > 1 {
		return errors.NewConfigurationError("gamma %v outside [0, 1]", h.Gamma)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
