// Package model resolves user-supplied test models into an immutable step
// catalogue with bound guards, weights, and lifecycle hooks.
//
// Steps are discovered by two coexisting mechanisms: reflection over
// exported methods following the StepXxx / GuardXxx / WeightXxx naming
// convention (the way the testing package discovers TestXxx), and explicit
// registration through a Builder. The catalogue is built once by Collect
// and never mutated afterwards.
//
// Import rules:
//   - CAN import: errors, std lib
//   - MUST NOT import: engine, history, algorithm
package model

import (
	"fmt"
	"math"

	osmoerrors "github.com/osmo-tool/osmo/errors"
)

// Action is a step body. A nil return means the step passed.
type Action func() error

// Guard reports whether its step is currently eligible for selection.
type Guard func() bool

// WeightFunc computes a step's selection weight. Values must be finite
// and strictly positive.
type WeightFunc func() float64

// Hook is a lifecycle or per-step hook body.
type Hook func() error

// DefaultWeight is the weight of steps with no weight binding.
const DefaultWeight = 1.0

// Step is a named, invokable action with its resolved guard, weight, and
// per-step hooks. Steps are created during introspection and immutable
// thereafter.
type Step struct {
	name   string
	action Action
	guard  Guard      // nil means always enabled
	weight WeightFunc // nil means DefaultWeight
	pre    Hook       // nil means no pre-hook
	post   Hook       // nil means no post-hook
}

// Name returns the step's unique name within its catalogue.
func (s *Step) Name() string {
	return s.name
}

// Enabled evaluates the step's guard. Steps without a guard are always
// enabled. A panic inside the guard is recovered and returned as an error;
// the engine routes it through the test-level error strategy.
func (s *Step) Enabled() (enabled bool, err error) {
	if s.guard == nil {
		return true, nil
	}
	defer func() {
		if r := recover(); r != nil {
			enabled = false
			err = fmt.Errorf("guard for step %q panicked: %v", s.name, r)
		}
	}()
	return s.guard(), nil
}

// CurrentWeight evaluates the step's weight binding fresh. Static weights
// are validated at introspection; computed weights are re-checked here
// because they may change between calls.
func (s *Step) CurrentWeight() (float64, error) {
	if s.weight == nil {
		return DefaultWeight, nil
	}
	w := s.weight()
	if err := validWeight(w); err != nil {
		return 0, fmt.Errorf("step %q: %w", s.name, err)
	}
	return w, nil
}

// Execute runs the step body. Panics are recovered into errors so the
// engine can route them through the error cascade.
func (s *Step) Execute() error {
	return call(s.action)
}

// PreHook returns the step's pre-hook, or nil if it has none.
func (s *Step) PreHook() Hook {
	return s.pre
}

// PostHook returns the step's post-hook, or nil if it has none.
func (s *Step) PostHook() Hook {
	return s.post
}

// call invokes fn, converting a panic into an error. A nil fn is a no-op.
func call(fn func() error) (err error) {
	if fn == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("panic: %w", e)
				return
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// RunHook invokes a hook with panic recovery. Exposed for the engine,
// which runs per-step and lifecycle hooks itself to preserve ordering.
func RunHook(h Hook) error {
	return call(h)
}

// validWeight rejects non-finite and non-positive weights.
func validWeight(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
		return fmt.Errorf("%w: %v", osmoerrors.ErrInvalidWeight, w)
	}
	return nil
}
