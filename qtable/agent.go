// Package qtable implements a tabular Q-learning agent: a table of action
// value estimates keyed by (state, action), a one-step update rule and an
// epsilon-greedy policy whose exploration rate decays with every learning step.
//
// An Agent is owned by a single caller. It does no locking; share one across
// goroutines only behind external synchronization.
package qtable

import (
	"math"
	"math/rand"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set"

	"github.com/teranos/qlearn/errors"
)

// Agent is a tabular Q-learning agent.
type Agent struct {
	q        map[Key]float64
	actions  []Action
	epsilon  float64
	alpha    float64
	gamma    float64
	clamp    ClampPolicy
	rng      *rand.Rand
	observer Observer
}

// Option configures an Agent at construction.
type Option func(*Agent)

// WithRand sets the generator used for exploration and tie-breaking.
func WithRand(rng *rand.Rand) Option {
	return func(a *Agent) {
		if rng != nil {
			a.rng = rng
		}
	}
}

// WithSeed seeds a private generator; equal seeds replay equal choices.
func WithSeed(seed int64) Option {
	return func(a *Agent) {
		a.rng = rand.New(rand.NewSource(seed))
	}
}

// WithClamp selects the clamp policy (default ClampNonNegative).
func WithClamp(p ClampPolicy) Option {
	return func(a *Agent) {
		a.clamp = p
	}
}

// WithObserver routes update/load/save notifications to o.
func WithObserver(o Observer) Option {
	return func(a *Agent) {
		if o != nil {
			a.observer = o
		}
	}
}

// New builds an agent over a fixed, ordered, non-empty action set.
// The action order is used for the estimate vector and tie-break indices.
func New(actions []Action, epsilon, alpha, gamma float64, opts ...Option) (*Agent, error) {
	if len(actions) == 0 {
		return nil, errors.WithHint(
			errors.NewConfigurationError("action set is empty"),
			"an agent needs at least one action to choose from")
	}
	seen := mapset.NewSet()
	for _, action := range actions {
		if !seen.Add(action) {
			return nil, errors.NewConfigurationError("duplicate action %q", action)
		}
	}
	hp := Hyperparameters{Epsilon: epsilon, Alpha: alpha, Gamma: gamma}
	if err := hp.Validate(); err != nil {
		return nil, err
	}

	a := &Agent{
		q:        make(map[Key]float64),
		actions:  append([]Action(nil), actions...),
		epsilon:  epsilon,
		alpha:    alpha,
		gamma:    gamma,
		clamp:    ClampNonNegative,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return a, nil
}

// Value returns the estimate for (state, action), or 0.0 if never updated.
func (a *Agent) Value(state State, action Action) float64 {
	return a.q[Key{State: state, Action: action}]
}

// Visited reports whether (state, action) has a stored entry. A visited
// pair may still hold 0.0.
func (a *Agent) Visited(state State, action Action) bool {
	_, ok := a.q[Key{State: state, Action: action}]
	return ok
}

// Update moves the estimate for (state, action) towards target by alpha,
// applies the clamp policy, stores and returns the new value.
func (a *Agent) Update(state State, action Action, target float64) float64 {
	key := Key{State: state, Action: action}
	old := a.q[key]
	updated := a.clamp.apply(old + a.alpha*(target-old))
	a.q[key] = updated
	a.observer.ValueUpdated(key, old, updated)
	return updated
}

// ChooseAction picks an action for state with the epsilon-greedy policy.
func (a *Agent) ChooseAction(state State) Action {
	action, _ := a.ChooseActionWithValues(state)
	return action
}

// ChooseActionWithValues is ChooseAction that also returns the estimate for
// every action, in action-set order.
//
// With probability epsilon the action is uniform over the whole set.
// Otherwise it is the action with the highest estimate; exact ties are
// broken uniformly at random.
func (a *Agent) ChooseActionWithValues(state State) (Action, []float64) {
	values := a.values(state)
	maxQ := maxOf(values)

	if a.rng.Float64() < a.epsilon {
		return a.actions[a.rng.Intn(len(a.actions))], values
	}

	var best []int
	for i, v := range values {
		if v == maxQ {
			best = append(best, i)
		}
	}
	if len(best) == 1 {
		return a.actions[best[0]], values
	}
	return a.actions[best[a.rng.Intn(len(best))]], values
}

// Learn performs one learning step for the transition
// (state, action) -> nextState with the observed reward, then decays epsilon.
//
//	target = reward + gamma * max_a' Q(nextState, a')
//	Q(state, action) <- Q + alpha * (target - Q)
//	epsilon <- max(EpsilonFloor, epsilon * EpsilonDecay)
func (a *Agent) Learn(state State, action Action, reward float64, nextState State) {
	target := reward + a.gamma*maxOf(a.values(nextState))
	a.Update(state, action, target)
	a.epsilon = math.Max(EpsilonFloor, a.epsilon*EpsilonDecay)
}

// Epsilon returns the current exploration rate.
func (a *Agent) Epsilon() float64 { return a.epsilon }

// Alpha returns the learning rate.
func (a *Agent) Alpha() float64 { return a.alpha }

// Gamma returns the discount factor.
func (a *Agent) Gamma() float64 { return a.gamma }

// Clamp returns the clamp policy.
func (a *Agent) Clamp() ClampPolicy { return a.clamp }

// Actions returns a copy of the action set in construction order.
func (a *Agent) Actions() []Action {
	return append([]Action(nil), a.actions...)
}

// Observer returns the observer notified of updates, loads and saves.
func (a *Agent) Observer() Observer { return a.observer }

// Len returns the number of stored entries.
func (a *Agent) Len() int { return len(a.q) }

// States returns every state with at least one stored entry, sorted.
func (a *Agent) States() []State {
	seen := make(map[State]struct{})
	for key := range a.q {
		seen[key.State] = struct{}{}
	}
	states := make([]State, 0, len(seen))
	for s := range seen {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })
	return states
}

// Entries returns the stored table sorted by state, then action.
func (a *Agent) Entries() []Entry {
	entries := make([]Entry, 0, len(a.q))
	for key, v := range a.q {
		entries = append(entries, Entry{State: key.State, Action: key.Action, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].State != entries[j].State {
			return entries[i].State < entries[j].State
		}
		return entries[i].Action < entries[j].Action
	})
	return entries
}

// Replace swaps the whole table for entries. The current table is kept if
// any entry is rejected: actions outside the action set, non-finite values,
// duplicate keys, or negative values under ClampNonNegative.
func (a *Agent) Replace(entries []Entry) error {
	known := mapset.NewSet()
	for _, action := range a.actions {
		known.Add(action)
	}

	q := make(map[Key]float64, len(entries))
	for _, e := range entries {
		if !known.Contains(e.Action) {
			return errors.WithHintf(
				errors.NewInvalidRequestError("unknown action %q for state %s", e.Action, e.State),
				"agent actions: %v", a.actions)
		}
		if !finite(e.Value) {
			return errors.NewInvalidRequestError("non-finite value %v for (%s, %s)", e.Value, e.State, e.Action)
		}
		if a.clamp == ClampNonNegative && e.Value < 0 {
			return errors.NewInvalidRequestError("negative value %v for (%s, %s)", e.Value, e.State, e.Action)
		}
		if _, dup := q[e.Key()]; dup {
			return errors.NewInvalidRequestError("duplicate entry for (%s, %s)", e.State, e.Action)
		}
		q[e.Key()] = e.Value
	}
	a.q = q
	return nil
}

func (a *Agent) values(state State) []float64 {
	values := make([]float64, len(a.actions))
	for i, action := range a.actions {
		values[i] = a.Value(state, action)
	}
	return values
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
