package engine

import (
	"github.com/osmo-tool/osmo/algorithm"
	"github.com/osmo-tool/osmo/endcondition"
	"github.com/osmo-tool/osmo/errorstrategy"
)

// Config captures a run's behavior at engine construction. Mutating a
// Config after the engine is built has no effect; build a new engine to
// reconfigure.
type Config struct {
	// Seed seeds the random source. When nil, a seed is derived from the
	// current time and recorded; Engine.Seed returns the resolved value.
	Seed *int64

	// Algorithm selects the next step. Defaults to algorithm.Random.
	Algorithm algorithm.Algorithm

	// TestEndCondition ends the current test. Defaults to Length(10).
	TestEndCondition endcondition.EndCondition

	// SuiteEndCondition ends the suite. Defaults to Length(1).
	SuiteEndCondition endcondition.EndCondition

	// TestErrorStrategy decides errors at the test level.
	// Defaults to AlwaysRaise.
	TestErrorStrategy errorstrategy.Strategy

	// SuiteErrorStrategy decides errors the test level propagated.
	// Defaults to AlwaysRaise.
	SuiteErrorStrategy errorstrategy.Strategy

	// StopOnFail ends the suite on any propagated test-level error,
	// without consulting the suite strategy.
	StopOnFail bool

	// StopTestOnException ends the current test on any non-assertion step
	// error even when the test strategy absorbs it. The error stays
	// absorbed; only the test is cut short.
	StopTestOnException bool
}

// WithSeed returns a copy of the config pinned to the given seed.
func (c Config) WithSeed(seed int64) Config {
	c.Seed = &seed
	return c
}

// DefaultConfig mirrors the historical defaults: fully random selection,
// ten steps per test, one test per suite, raise on first error.
func DefaultConfig() Config {
	testEnd, _ := endcondition.NewLength(10) // literals cannot fail validation
	suiteEnd, _ := endcondition.NewLength(1)
	return Config{
		Algorithm:          algorithm.Random{},
		TestEndCondition:   testEnd,
		SuiteEndCondition:  suiteEnd,
		TestErrorStrategy:  errorstrategy.AlwaysRaise{},
		SuiteErrorStrategy: errorstrategy.AlwaysRaise{},
	}
}

// withDefaults fills any nil collaborator with its default.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Algorithm == nil {
		c.Algorithm = def.Algorithm
	}
	if c.TestEndCondition == nil {
		c.TestEndCondition = def.TestEndCondition
	}
	if c.SuiteEndCondition == nil {
		c.SuiteEndCondition = def.SuiteEndCondition
	}
	if c.TestErrorStrategy == nil {
		c.TestErrorStrategy = def.TestErrorStrategy
	}
	if c.SuiteErrorStrategy == nil {
		c.SuiteErrorStrategy = def.SuiteErrorStrategy
	}
	return c
}
