// Package engine drives the generate/execute loop: a nested state machine
// (suite, test, step) that evaluates guards, asks the selection algorithm
// for the next step, invokes lifecycle hooks in order, routes errors
// through the two-level strategy cascade, and writes every outcome to the
// history ledger.
//
// This file implements the engine phase machine, which enforces valid
// phase transitions during a run.
//
// Import rules:
//   - CAN import: model, history, algorithm, endcondition, errorstrategy,
//     clock, errors, std lib
//   - MUST NOT import: internal/cli, internal/config, report
package engine

import (
	"fmt"

	osmoerrors "github.com/osmo-tool/osmo/errors"
)

// Phase is the engine's position in the nested state machine.
type Phase string

// Engine phases. A run walks IDLE → SUITE → TEST → STEP and back out.
const (
	// PhaseIdle means no suite is running.
	PhaseIdle Phase = "idle"

	// PhaseSuite means the suite is active but no test is open.
	PhaseSuite Phase = "suite"

	// PhaseTest means a test case is open between steps.
	PhaseTest Phase = "test"

	// PhaseStep means a step is being selected and executed.
	PhaseStep Phase = "step"
)

// String returns the phase name.
func (p Phase) String() string {
	return string(p)
}

// ValidTransitions defines all allowed phase transitions.
// Format: from_phase -> []to_phases
//
// The machine follows this flow:
//
//	Idle → Suite
//	Suite → Test, Idle
//	Test → Step, Suite
//	Step → Test, Suite
//
// Step → Suite covers propagation that abandons the current test.
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[Phase][]Phase{
	PhaseIdle:  {PhaseSuite},
	PhaseSuite: {PhaseTest, PhaseIdle},
	PhaseTest:  {PhaseStep, PhaseSuite},
	PhaseStep:  {PhaseTest, PhaseSuite},
}

// IsValidTransition checks if a transition between phases is allowed.
// Staying in the same phase is not a transition.
func IsValidTransition(from, to Phase) bool {
	if from == to {
		return false
	}
	for _, target := range ValidTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// transition validates and applies a phase change. An invalid transition
// is an engine bug, surfaced as a wrapped ErrInvalidTransition.
func (e *Engine) transition(to Phase) error {
	if !IsValidTransition(e.phase, to) {
		return fmt.Errorf("%w: cannot transition from %s to %s",
			osmoerrors.ErrInvalidTransition, e.phase, to)
	}
	e.logger.Trace().
		Str("from", e.phase.String()).
		Str("to", to.String()).
		Msg("phase transition")
	e.phase = to
	return nil
}

// CurrentPhase returns the engine's phase. Outside Run this is PhaseIdle.
func (e *Engine) CurrentPhase() Phase {
	return e.phase
}
