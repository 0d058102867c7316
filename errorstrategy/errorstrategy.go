// Package errorstrategy decides whether an in-run error halts execution
// or is absorbed. Strategies return an explicit Decision instead of
// re-panicking, and the engine branches on the returned value; one
// strategy runs at the test level and another at the suite level, and any
// pairing of the two is valid.
//
// Import rules:
//   - CAN import: history, errors, std lib
//   - MUST NOT import: engine, model, algorithm
package errorstrategy

import (
	osmoerrors "github.com/osmo-tool/osmo/errors"
	"github.com/osmo-tool/osmo/history"
)

// Decision is a strategy's verdict on one error.
type Decision int

const (
	// Propagate halts the current scope and hands the error outward.
	Propagate Decision = iota

	// Absorb records the error and continues execution.
	Absorb
)

// String returns the decision name for logging.
func (d Decision) String() string {
	switch d {
	case Propagate:
		return "propagate"
	case Absorb:
		return "absorb"
	default:
		return "unknown"
	}
}

// Strategy decides the fate of errors at the two cascade levels.
// OnSuiteError is consulted only for errors the test level propagated.
type Strategy interface {
	// OnTestError is called after an error inside a test.
	OnTestError(err error, h *history.History) Decision

	// OnSuiteError is called after a test propagated an error.
	OnSuiteError(err error, h *history.History) Decision
}

// AlwaysRaise propagates every error. This is the default at both levels.
type AlwaysRaise struct{}

// OnTestError always propagates.
func (AlwaysRaise) OnTestError(_ error, _ *history.History) Decision { return Propagate }

// OnSuiteError always propagates.
func (AlwaysRaise) OnSuiteError(_ error, _ *history.History) Decision { return Propagate }

// AlwaysIgnore absorbs every error.
type AlwaysIgnore struct{}

// OnTestError always absorbs.
func (AlwaysIgnore) OnTestError(_ error, _ *history.History) Decision { return Absorb }

// OnSuiteError always absorbs.
func (AlwaysIgnore) OnSuiteError(_ error, _ *history.History) Decision { return Absorb }

// IgnoreAssertions absorbs assertion failures and propagates everything
// else.
type IgnoreAssertions struct{}

// OnTestError absorbs assertion failures only.
func (IgnoreAssertions) OnTestError(err error, _ *history.History) Decision {
	return assertionDecision(err)
}

// OnSuiteError absorbs assertion failures only.
func (IgnoreAssertions) OnSuiteError(err error, _ *history.History) Decision {
	return assertionDecision(err)
}

func assertionDecision(err error) Decision {
	if osmoerrors.IsAssertion(err) {
		return Absorb
	}
	return Propagate
}

// AllowCount absorbs up to n errors in scope; the (n+1)-th propagates.
// The scope is the current test for OnTestError and the whole suite for
// OnSuiteError. Counts are read from the history, which already includes
// the error under decision.
type AllowCount struct {
	n int
}

// NewAllowCount builds an AllowCount strategy. n must not be negative.
func NewAllowCount(n int) (*AllowCount, error) {
	if n < 0 {
		return nil, osmoerrors.NewConfigurationError("allow count must be >= 0, got %d", n)
	}
	return &AllowCount{n: n}, nil
}

// OnTestError absorbs while the current test's error count is within the
// allowance.
func (a *AllowCount) OnTestError(_ error, h *history.History) Decision {
	count := 0
	if cur := h.CurrentTest(); cur != nil {
		count = cur.ErrorCount()
	}
	return a.decide(count)
}

// OnSuiteError absorbs while the suite-wide error count is within the
// allowance.
func (a *AllowCount) OnSuiteError(_ error, h *history.History) Decision {
	return a.decide(h.ErrorCount())
}

func (a *AllowCount) decide(observed int) Decision {
	if observed <= a.n {
		return Absorb
	}
	return Propagate
}
