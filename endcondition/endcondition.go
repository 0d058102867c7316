// Package endcondition provides the predicates that decide when a test
// case or a whole suite is finished. Conditions are evaluated against the
// history after the step or test they gate on, and compose with And / Or.
//
// Import rules:
//   - CAN import: history, errors, std lib
//   - MUST NOT import: engine, model, algorithm
package endcondition

import (
	"time"

	osmoerrors "github.com/osmo-tool/osmo/errors"
	"github.com/osmo-tool/osmo/history"
)

// EndCondition exposes two independent predicates over the current
// history: one consulted after every step, one after every test.
type EndCondition interface {
	// EndTest reports whether the current test case should end.
	EndTest(h *history.History) bool

	// EndSuite reports whether the suite should end.
	EndSuite(h *history.History) bool
}

// Length ends a test once it has executed n steps, and a suite once it
// has sealed n tests.
type Length struct {
	n int
}

// NewLength builds a Length condition. n must be at least 1.
func NewLength(n int) (*Length, error) {
	if n < 1 {
		return nil, osmoerrors.NewConfigurationError("length must be >= 1, got %d", n)
	}
	return &Length{n: n}, nil
}

// EndTest reports whether the current test has reached n steps.
func (l *Length) EndTest(h *history.History) bool {
	cur := h.CurrentTest()
	return cur != nil && cur.StepCount() >= l.n
}

// EndSuite reports whether n tests have been sealed.
func (l *Length) EndSuite(h *history.History) bool {
	return h.SealedTestCount() >= l.n
}

// Time ends a test or suite once its wall-clock duration reaches d. It
// does not preempt a running step; the loop stops at the next evaluation
// point.
type Time struct {
	d time.Duration
}

// NewTime builds a Time condition. d must be positive.
func NewTime(d time.Duration) (*Time, error) {
	if d <= 0 {
		return nil, osmoerrors.NewConfigurationError("time end condition must be positive, got %s", d)
	}
	return &Time{d: d}, nil
}

// EndTest reports whether the current test has run for at least d.
func (t *Time) EndTest(h *history.History) bool {
	cur := h.CurrentTest()
	return cur != nil && cur.Duration() >= t.d
}

// EndSuite reports whether the suite has run for at least d.
func (t *Time) EndSuite(h *history.History) bool {
	return h.Duration() >= t.d
}

// StepCoverage ends once the executed share of the catalogue reaches a
// percentage. The test-level check considers only the current test's
// steps; the suite-level check is cumulative across the whole suite.
type StepCoverage struct {
	percent   float64
	catalogue []string
}

// NewStepCoverage builds a StepCoverage condition. percent must be within
// [1, 100] and the catalogue must not be empty.
func NewStepCoverage(percent float64, catalogue []string) (*StepCoverage, error) {
	if percent < 1 || percent > 100 {
		return nil, osmoerrors.NewConfigurationError("coverage percent must be in [1, 100], got %v", percent)
	}
	if len(catalogue) == 0 {
		return nil, osmoerrors.NewConfigurationError("coverage catalogue must not be empty")
	}
	names := make([]string, len(catalogue))
	copy(names, catalogue)
	return &StepCoverage{percent: percent, catalogue: names}, nil
}

// EndTest reports whether the current test alone covers enough of the
// catalogue.
func (c *StepCoverage) EndTest(h *history.History) bool {
	cur := h.CurrentTest()
	return cur != nil && cur.CoveragePercent(c.catalogue) >= c.percent
}

// EndSuite reports whether the suite cumulatively covers enough of the
// catalogue.
func (c *StepCoverage) EndSuite(h *history.History) bool {
	return h.CoveragePercent(c.catalogue) >= c.percent
}

// Endless never ends. Used for open-ended online runs, which must be
// interrupted externally.
type Endless struct{}

// EndTest always reports false.
func (Endless) EndTest(_ *history.History) bool { return false }

// EndSuite always reports false.
func (Endless) EndSuite(_ *history.History) bool { return false }
