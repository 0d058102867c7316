package engine_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmo-tool/osmo/algorithm"
	"github.com/osmo-tool/osmo/clock"
	"github.com/osmo-tool/osmo/endcondition"
	"github.com/osmo-tool/osmo/engine"
	osmoerrors "github.com/osmo-tool/osmo/errors"
	"github.com/osmo-tool/osmo/errorstrategy"
	"github.com/osmo-tool/osmo/history"
	"github.com/osmo-tool/osmo/model"
)

func seedPtr(s int64) *int64 { return &s }

func mustLength(t *testing.T, n int) endcondition.EndCondition {
	t.Helper()
	cond, err := endcondition.NewLength(n)
	require.NoError(t, err)
	return cond
}

func newEngine(t *testing.T, cat *model.Catalogue, cfg engine.Config) *engine.Engine {
	t.Helper()
	eng, err := engine.New(cat, cfg, zerolog.Nop(),
		engine.WithClock(clock.NewMock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, err)
	return eng
}

// stepSequence flattens the executed step names across all tests.
func stepSequence(h *history.History) []string {
	var names []string
	for _, tc := range h.Tests() {
		for _, log := range tc.Steps() {
			names = append(names, log.Name)
		}
	}
	return names
}

// TestRun_LengthBoundaries: a suite with Length(n) per test and Length(m)
// per suite and no errors produces exactly m tests of exactly n steps.
func TestRun_LengthBoundaries(t *testing.T) {
	b := model.NewBuilder()
	b.Step("a", func() error { return nil })
	b.Step("b", func() error { return nil })
	cat, err := model.Collect(b)
	require.NoError(t, err)

	cfg := engine.Config{
		Seed:              seedPtr(1),
		TestEndCondition:  mustLength(t, 3),
		SuiteEndCondition: mustLength(t, 2),
	}
	eng := newEngine(t, cat, cfg)

	h, err := eng.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, h.TestCount())
	for _, tc := range h.Tests() {
		assert.Equal(t, 3, tc.StepCount())
		assert.True(t, tc.Stopped(), "every record is sealed after the run")
		assert.Equal(t, 0, tc.ErrorCount())
	}
	assert.Equal(t, 6, h.TotalSteps())
	assert.True(t, h.Stopped())
	assert.Equal(t, engine.PhaseIdle, eng.CurrentPhase())
}

// guardedCounterModel is a guarded two-step model: b enables only after a
// has executed.
type guardedCounterModel struct {
	value int
}

func (m *guardedCounterModel) StepA()       { m.value++ }
func (m *guardedCounterModel) StepB()       {}
func (m *guardedCounterModel) GuardB() bool { return m.value > 0 }

// TestRun_GuardedFirstStep: with seed 333, Random, Length(5)/Length(1)
// and AlwaysRaise at both levels, exactly one test of five steps runs,
// the first step is "a" (the only enabled one), and no errors occur.
func TestRun_GuardedFirstStep(t *testing.T) {
	cat, err := model.Collect(&guardedCounterModel{})
	require.NoError(t, err)

	cfg := engine.Config{
		Seed:               seedPtr(333),
		Algorithm:          algorithm.Random{},
		TestEndCondition:   mustLength(t, 5),
		SuiteEndCondition:  mustLength(t, 1),
		TestErrorStrategy:  errorstrategy.AlwaysRaise{},
		SuiteErrorStrategy: errorstrategy.AlwaysRaise{},
	}
	eng := newEngine(t, cat, cfg)

	h, err := eng.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, h.TestCount())
	seq := stepSequence(h)
	require.Len(t, seq, 5)
	assert.Equal(t, "a", seq[0], "only step a is enabled at the start")
	for _, name := range seq {
		assert.Contains(t, []string{"a", "b"}, name)
	}
	assert.Equal(t, 0, h.ErrorCount())
}

// TestRun_AllowCountCascade: a single always-enabled step raising an
// assertion, AllowCount(2) per test and AlwaysRaise per suite. The first
// two errors absorb, the third propagates and terminates the suite.
func TestRun_AllowCountCascade(t *testing.T) {
	b := model.NewBuilder()
	b.Step("s", func() error { return osmoerrors.Assertionf("always fails") })
	cat, err := model.Collect(b)
	require.NoError(t, err)

	allow, err := errorstrategy.NewAllowCount(2)
	require.NoError(t, err)

	cfg := engine.Config{
		Seed:               seedPtr(1),
		TestEndCondition:   mustLength(t, 10),
		SuiteEndCondition:  mustLength(t, 1),
		TestErrorStrategy:  allow,
		SuiteErrorStrategy: errorstrategy.AlwaysRaise{},
	}
	eng := newEngine(t, cat, cfg)

	h, runErr := eng.Run(context.Background())
	require.Error(t, runErr)

	var stepFailed *osmoerrors.StepFailedError
	require.ErrorAs(t, runErr, &stepFailed)
	assert.Equal(t, "s", stepFailed.Step)
	assert.True(t, osmoerrors.IsAssertion(runErr))

	require.Equal(t, 1, h.TestCount())
	tc := h.Tests()[0]
	assert.True(t, tc.Stopped())
	require.Equal(t, 3, tc.StepCount(), "suite terminates after the third error")
	assert.Equal(t, 3, tc.ErrorCount())
	for _, log := range tc.Steps() {
		assert.True(t, log.Failed())
	}
}

// TestRun_NoAvailableSteps: when every guard is false the engine raises a
// typed error instead of calling the algorithm, and the default cascade
// terminates the suite with it.
func TestRun_NoAvailableSteps(t *testing.T) {
	b := model.NewBuilder()
	b.Step("locked", func() error { return nil }).Guard(func() bool { return false })
	b.Step("sealed", func() error { return nil }).Enabled(false)
	cat, err := model.Collect(b)
	require.NoError(t, err)

	eng := newEngine(t, cat, engine.Config{Seed: seedPtr(1)})

	h, runErr := eng.Run(context.Background())
	require.Error(t, runErr)

	var noSteps *osmoerrors.NoAvailableStepsError
	require.ErrorAs(t, runErr, &noSteps)
	assert.Equal(t, 1, noSteps.Test)

	require.Equal(t, 1, h.TestCount())
	tc := h.Tests()[0]
	assert.Equal(t, 0, tc.StepCount(), "no step records appear in history")
	assert.Equal(t, 1, tc.ErrorCount(), "the failure itself is recorded")
	assert.True(t, tc.Stopped())
}

// TestRun_BalancingFairness: three always-enabled steps under Balancing
// for thirty steps settle within one execution of each other.
func TestRun_BalancingFairness(t *testing.T) {
	b := model.NewBuilder()
	b.Step("a", func() error { return nil })
	b.Step("b", func() error { return nil })
	b.Step("c", func() error { return nil })
	cat, err := model.Collect(b)
	require.NoError(t, err)

	cfg := engine.Config{
		Seed:              seedPtr(77),
		Algorithm:         algorithm.Balancing{},
		TestEndCondition:  mustLength(t, 30),
		SuiteEndCondition: mustLength(t, 1),
	}
	eng := newEngine(t, cat, cfg)

	h, err := eng.Run(context.Background())
	require.NoError(t, err)

	freq := h.StepFrequency()
	assert.Equal(t, 30, h.TotalSteps())
	for _, name := range []string{"a", "b", "c"} {
		assert.Equal(t, 10, freq[name], "balancing settles at 10/10/10")
	}
}

// TestRun_CoverageComposition: And(Length(5), StepCoverage(100)) ends the
// test at the earliest step index >= 5 at which all four steps appeared.
func TestRun_CoverageComposition(t *testing.T) {
	names := []string{"a", "b", "c", "d"}
	b := model.NewBuilder()
	for _, name := range names {
		b.Step(name, func() error { return nil })
	}
	cat, err := model.Collect(b)
	require.NoError(t, err)

	coverage, err := endcondition.NewStepCoverage(100, names)
	require.NoError(t, err)
	testEnd, err := endcondition.And(mustLength(t, 5), coverage)
	require.NoError(t, err)

	cfg := engine.Config{
		Seed:              seedPtr(12345),
		TestEndCondition:  testEnd,
		SuiteEndCondition: mustLength(t, 1),
	}
	eng := newEngine(t, cat, cfg)

	h, err := eng.Run(context.Background())
	require.NoError(t, err)

	seq := stepSequence(h)
	require.GreaterOrEqual(t, len(seq), 5)
	seen := map[string]bool{}
	for _, name := range seq {
		seen[name] = true
	}
	assert.Len(t, seen, 4, "all four steps appear by test end")

	// A step earlier, the conjunction did not yet hold.
	prefix := seq[:len(seq)-1]
	prefixSeen := map[string]bool{}
	for _, name := range prefix {
		prefixSeen[name] = true
	}
	satisfiedEarlier := len(prefix) >= 5 && len(prefixSeen) == 4
	assert.False(t, satisfiedEarlier, "the test ends at the earliest satisfying index")
}

// TestRun_Determinism: identical seeds reproduce the exact step sequence;
// a different seed diverges.
func TestRun_Determinism(t *testing.T) {
	build := func() *model.Catalogue {
		b := model.NewBuilder()
		b.Step("x", func() error { return nil })
		b.Step("y", func() error { return nil })
		b.Step("z", func() error { return nil })
		cat, err := model.Collect(b)
		require.NoError(t, err)
		return cat
	}

	run := func(seed int64) []string {
		cfg := engine.Config{
			Seed:              seedPtr(seed),
			TestEndCondition:  mustLength(t, 20),
			SuiteEndCondition: mustLength(t, 3),
		}
		eng := newEngine(t, build(), cfg)
		h, err := eng.Run(context.Background())
		require.NoError(t, err)
		return stepSequence(h)
	}

	assert.Equal(t, run(42), run(42))
	assert.NotEqual(t, run(42), run(43))
}

// TestRun_RepeatedRunsReproduce: the same engine value reproduces the
// sequence on every Run call because the source is re-seeded.
func TestRun_RepeatedRunsReproduce(t *testing.T) {
	b := model.NewBuilder()
	b.Step("x", func() error { return nil })
	b.Step("y", func() error { return nil })
	cat, err := model.Collect(b)
	require.NoError(t, err)

	cfg := engine.Config{
		Seed:              seedPtr(5),
		TestEndCondition:  mustLength(t, 15),
		SuiteEndCondition: mustLength(t, 1),
	}
	eng := newEngine(t, cat, cfg)

	first, err := eng.Run(context.Background())
	require.NoError(t, err)
	second, err := eng.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stepSequence(first), stepSequence(second))
}

// recorder captures hook and step invocations for trace assertions.
type recorder struct {
	trace []string
}

func (r *recorder) mark(token string) model.Hook {
	return func() error {
		r.trace = append(r.trace, token)
		return nil
	}
}

func (r *recorder) step(token string) model.Action {
	return func() error {
		r.trace = append(r.trace, token)
		return nil
	}
}

// tracedCatalogue builds a one-step model with every hook recording into
// the recorder.
func tracedCatalogue(t *testing.T, rec *recorder, stepErr error) *model.Catalogue {
	t.Helper()
	b := model.NewBuilder()
	action := rec.step("step_x")
	if stepErr != nil {
		action = func() error {
			rec.trace = append(rec.trace, "step_x")
			return stepErr
		}
	}
	b.Step("x", action).
		Pre(rec.mark("pre_x")).
		Post(rec.mark("post_x"))
	b.BeforeSuite(rec.mark("before_suite"))
	b.AfterSuite(rec.mark("after_suite"))
	b.BeforeTest(rec.mark("before_test"))
	b.AfterTest(rec.mark("after_test"))
	b.BeforeStep(rec.mark("before"))
	b.AfterStep(rec.mark("after"))

	cat, err := model.Collect(b)
	require.NoError(t, err)
	return cat
}

// TestRun_HookOrdering: the observed hook trace is a sentence of
//
//	before_suite (before_test (before pre_X X post_X after)* after_test)* after_suite
func TestRun_HookOrdering(t *testing.T) {
	rec := &recorder{}
	cat := tracedCatalogue(t, rec, nil)

	cfg := engine.Config{
		Seed:              seedPtr(1),
		TestEndCondition:  mustLength(t, 2),
		SuiteEndCondition: mustLength(t, 2),
	}
	eng := newEngine(t, cat, cfg)

	_, err := eng.Run(context.Background())
	require.NoError(t, err)

	stepBlock := []string{"before", "pre_x", "step_x", "post_x", "after"}
	testBlock := append([]string{"before_test"}, append(append([]string{}, stepBlock...), stepBlock...)...)
	testBlock = append(testBlock, "after_test")

	want := []string{"before_suite"}
	want = append(want, testBlock...)
	want = append(want, testBlock...)
	want = append(want, "after_suite")

	assert.Equal(t, want, rec.trace)
}

// TestRun_CleanupOnStepError: the general after hook, after_test, and
// after_suite all still run when the step fails and propagates.
func TestRun_CleanupOnStepError(t *testing.T) {
	rec := &recorder{}
	cat := tracedCatalogue(t, rec, errors.New("boom"))

	eng := newEngine(t, cat, engine.Config{Seed: seedPtr(1)})
	_, runErr := eng.Run(context.Background())
	require.Error(t, runErr)

	assert.Equal(t, []string{
		"before_suite",
		"before_test",
		"before", "pre_x", "step_x", "after", // post_x skipped: the step body failed
		"after_test",
		"after_suite",
	}, rec.trace)
}

// TestRun_CleanupOnHookErrors: every before_* hook that runs has its
// matching after_* hook run exactly once, even when the before hook
// itself fails.
func TestRun_CleanupOnHookErrors(t *testing.T) {
	t.Run("before_suite failure still runs after_suite", func(t *testing.T) {
		var afterRan int
		b := model.NewBuilder()
		b.Step("x", func() error { return nil })
		b.BeforeSuite(func() error { return errors.New("setup failed") })
		b.AfterSuite(func() error { afterRan++; return nil })
		cat, err := model.Collect(b)
		require.NoError(t, err)

		eng := newEngine(t, cat, engine.Config{Seed: seedPtr(1)})
		h, runErr := eng.Run(context.Background())
		require.Error(t, runErr)

		var hookFailed *osmoerrors.HookFailedError
		require.ErrorAs(t, runErr, &hookFailed)
		assert.Equal(t, "before_suite", hookFailed.Hook)
		assert.Equal(t, 1, afterRan)
		assert.Equal(t, 0, h.TestCount(), "no test ran")
	})

	t.Run("before_test failure still runs after_test", func(t *testing.T) {
		var afterRan int
		b := model.NewBuilder()
		b.Step("x", func() error { return nil })
		b.BeforeTest(func() error { return errors.New("setup failed") })
		b.AfterTest(func() error { afterRan++; return nil })
		cat, err := model.Collect(b)
		require.NoError(t, err)

		eng := newEngine(t, cat, engine.Config{Seed: seedPtr(1)})
		h, runErr := eng.Run(context.Background())
		require.Error(t, runErr)

		var hookFailed *osmoerrors.HookFailedError
		require.ErrorAs(t, runErr, &hookFailed)
		assert.Equal(t, "before_test", hookFailed.Hook)
		assert.Equal(t, 1, afterRan)
		require.Equal(t, 1, h.TestCount())
		assert.Equal(t, 1, h.Tests()[0].ErrorCount())
	})

	t.Run("before hook failure still runs after hook", func(t *testing.T) {
		var afterRan, stepRan int
		b := model.NewBuilder()
		b.Step("x", func() error { stepRan++; return nil })
		b.BeforeStep(func() error { return errors.New("before failed") })
		b.AfterStep(func() error { afterRan++; return nil })
		cat, err := model.Collect(b)
		require.NoError(t, err)

		eng := newEngine(t, cat, engine.Config{Seed: seedPtr(1)})
		_, runErr := eng.Run(context.Background())
		require.Error(t, runErr)

		var hookFailed *osmoerrors.HookFailedError
		require.ErrorAs(t, runErr, &hookFailed)
		assert.Equal(t, "before", hookFailed.Hook)
		assert.Equal(t, 1, afterRan)
		assert.Equal(t, 0, stepRan, "the step never executed")
	})
}

// TestRun_GuardErrorRouted: a panicking guard is a test-level error with
// no step executed, routed through the test strategy.
func TestRun_GuardErrorRouted(t *testing.T) {
	b := model.NewBuilder()
	b.Step("x", func() error { return nil }).Guard(func() bool { panic("guard broke") })
	cat, err := model.Collect(b)
	require.NoError(t, err)

	eng := newEngine(t, cat, engine.Config{Seed: seedPtr(1)})
	h, runErr := eng.Run(context.Background())
	require.Error(t, runErr)
	assert.Contains(t, runErr.Error(), "guard broke")
	assert.Equal(t, 0, h.TotalSteps())
	assert.Equal(t, 1, h.ErrorCount())
}

// TestRun_SuiteStrategyAbsorbs: an error propagated by the test level can
// be absorbed at the suite level and the suite continues.
func TestRun_SuiteStrategyAbsorbs(t *testing.T) {
	calls := 0
	b := model.NewBuilder()
	b.Step("flaky", func() error {
		calls++
		if calls == 1 {
			return errors.New("first call fails")
		}
		return nil
	})
	cat, err := model.Collect(b)
	require.NoError(t, err)

	cfg := engine.Config{
		Seed:               seedPtr(1),
		TestEndCondition:   mustLength(t, 2),
		SuiteEndCondition:  mustLength(t, 2),
		TestErrorStrategy:  errorstrategy.AlwaysRaise{},
		SuiteErrorStrategy: errorstrategy.AlwaysIgnore{},
	}
	eng := newEngine(t, cat, cfg)

	h, runErr := eng.Run(context.Background())
	require.NoError(t, runErr, "the suite strategy absorbed the failure")
	assert.Equal(t, 2, h.SealedTestCount())
	assert.Equal(t, 1, h.ErrorCount())
}

// TestRun_StopOnFail: a propagated test error ends the suite immediately,
// even though the suite strategy would absorb it.
func TestRun_StopOnFail(t *testing.T) {
	b := model.NewBuilder()
	b.Step("bad", func() error { return errors.New("boom") })
	cat, err := model.Collect(b)
	require.NoError(t, err)

	cfg := engine.Config{
		Seed:               seedPtr(1),
		TestEndCondition:   mustLength(t, 5),
		SuiteEndCondition:  mustLength(t, 5),
		TestErrorStrategy:  errorstrategy.AlwaysRaise{},
		SuiteErrorStrategy: errorstrategy.AlwaysIgnore{},
		StopOnFail:         true,
	}
	eng := newEngine(t, cat, cfg)

	h, runErr := eng.Run(context.Background())
	require.Error(t, runErr)
	assert.Equal(t, 1, h.TestCount())
}

// TestRun_StopTestOnException: an absorbed non-assertion error still ends
// the current test, without reaching the suite strategy; assertion errors
// do not trigger the cut.
func TestRun_StopTestOnException(t *testing.T) {
	t.Run("non-assertion error cuts the test", func(t *testing.T) {
		b := model.NewBuilder()
		b.Step("bad", func() error { return errors.New("io error") })
		cat, err := model.Collect(b)
		require.NoError(t, err)

		cfg := engine.Config{
			Seed:                seedPtr(1),
			TestEndCondition:    mustLength(t, 5),
			SuiteEndCondition:   mustLength(t, 2),
			TestErrorStrategy:   errorstrategy.AlwaysIgnore{},
			SuiteErrorStrategy:  errorstrategy.AlwaysRaise{},
			StopTestOnException: true,
		}
		eng := newEngine(t, cat, cfg)

		h, runErr := eng.Run(context.Background())
		require.NoError(t, runErr, "the error stays absorbed")
		require.Equal(t, 2, h.SealedTestCount())
		for _, tc := range h.Tests() {
			assert.Equal(t, 1, tc.StepCount(), "each test ends after its first error")
		}
	})

	t.Run("assertion errors do not cut the test", func(t *testing.T) {
		b := model.NewBuilder()
		b.Step("assert", func() error { return osmoerrors.Assertionf("nope") })
		cat, err := model.Collect(b)
		require.NoError(t, err)

		cfg := engine.Config{
			Seed:                seedPtr(1),
			TestEndCondition:    mustLength(t, 3),
			SuiteEndCondition:   mustLength(t, 1),
			TestErrorStrategy:   errorstrategy.AlwaysIgnore{},
			SuiteErrorStrategy:  errorstrategy.AlwaysRaise{},
			StopTestOnException: true,
		}
		eng := newEngine(t, cat, cfg)

		h, runErr := eng.Run(context.Background())
		require.NoError(t, runErr)
		require.Equal(t, 1, h.TestCount())
		assert.Equal(t, 3, h.Tests()[0].StepCount(), "assertions run to the end condition")
	})
}

// TestRun_InterruptNeverAbsorbed: a canceled context propagates through
// both AlwaysIgnore strategies, and the cleanup hooks still run.
func TestRun_InterruptNeverAbsorbed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var afterTest, afterSuite int
	calls := 0
	b := model.NewBuilder()
	b.Step("s", func() error {
		calls++
		if calls == 3 {
			cancel()
			return ctx.Err()
		}
		return nil
	})
	b.AfterTest(func() error { afterTest++; return nil })
	b.AfterSuite(func() error { afterSuite++; return nil })
	cat, err := model.Collect(b)
	require.NoError(t, err)

	cfg := engine.Config{
		Seed:               seedPtr(1),
		TestEndCondition:   endcondition.Endless{},
		SuiteEndCondition:  endcondition.Endless{},
		TestErrorStrategy:  errorstrategy.AlwaysIgnore{},
		SuiteErrorStrategy: errorstrategy.AlwaysIgnore{},
	}
	eng := newEngine(t, cat, cfg)

	h, runErr := eng.Run(ctx)
	require.Error(t, runErr)
	assert.ErrorIs(t, runErr, context.Canceled)
	assert.Equal(t, 1, afterTest, "after_test ran during interrupt cleanup")
	assert.Equal(t, 1, afterSuite, "after_suite ran during interrupt cleanup")
	assert.True(t, h.Stopped())
	for _, tc := range h.Tests() {
		assert.True(t, tc.Stopped())
	}
}

// TestRun_AfterHookErrorRouted: a failing general after hook is a
// test-level error.
func TestRun_AfterHookErrorRouted(t *testing.T) {
	b := model.NewBuilder()
	b.Step("x", func() error { return nil })
	b.AfterStep(func() error { return errors.New("teardown broke") })
	cat, err := model.Collect(b)
	require.NoError(t, err)

	eng := newEngine(t, cat, engine.Config{Seed: seedPtr(1)})
	h, runErr := eng.Run(context.Background())
	require.Error(t, runErr)

	var hookFailed *osmoerrors.HookFailedError
	require.ErrorAs(t, runErr, &hookFailed)
	assert.Equal(t, "after", hookFailed.Hook)
	assert.Equal(t, 1, h.TotalSteps(), "the step itself completed and was recorded")
	assert.False(t, h.Tests()[0].Steps()[0].Failed())
}

// TestRun_PanicInStep: a panicking step is captured as a step failure
// rather than crashing the engine.
func TestRun_PanicInStep(t *testing.T) {
	b := model.NewBuilder()
	b.Step("explode", func() error { panic(fmt.Errorf("kaboom")) })
	cat, err := model.Collect(b)
	require.NoError(t, err)

	eng := newEngine(t, cat, engine.Config{Seed: seedPtr(1)})
	h, runErr := eng.Run(context.Background())
	require.Error(t, runErr)

	var stepFailed *osmoerrors.StepFailedError
	require.ErrorAs(t, runErr, &stepFailed)
	assert.Contains(t, runErr.Error(), "kaboom")
	require.Equal(t, 1, h.TotalSteps())
	assert.True(t, h.Tests()[0].Steps()[0].Failed())
}

// TestNew_Validation covers construction-time checks and seed recording.
func TestNew_Validation(t *testing.T) {
	t.Run("nil catalogue", func(t *testing.T) {
		_, err := engine.New(nil, engine.DefaultConfig(), zerolog.Nop())
		assert.ErrorIs(t, err, osmoerrors.ErrConfiguration)
	})

	t.Run("explicit seed is recorded", func(t *testing.T) {
		b := model.NewBuilder()
		b.Step("x", func() error { return nil })
		cat, err := model.Collect(b)
		require.NoError(t, err)

		eng, err := engine.New(cat, engine.Config{Seed: seedPtr(987)}, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, int64(987), eng.Seed())
	})

	t.Run("derived seed is recorded", func(t *testing.T) {
		b := model.NewBuilder()
		b.Step("x", func() error { return nil })
		cat, err := model.Collect(b)
		require.NoError(t, err)

		eng, err := engine.New(cat, engine.Config{}, zerolog.Nop())
		require.NoError(t, err)
		assert.NotZero(t, eng.Seed())
	})
}

// TestRun_ErrorStrategyPairings exercises representative pairings of the
// two cascade levels against a model that always fails.
func TestRun_ErrorStrategyPairings(t *testing.T) {
	newCat := func(t *testing.T) *model.Catalogue {
		t.Helper()
		b := model.NewBuilder()
		b.Step("bad", func() error { return errors.New("boom") })
		cat, err := model.Collect(b)
		require.NoError(t, err)
		return cat
	}

	tests := []struct {
		name       string
		testStrat  errorstrategy.Strategy
		suiteStrat errorstrategy.Strategy
		wantErr    bool
		wantTests  int
		wantSteps  int
	}{
		{
			name:       "raise/raise halts at the first error",
			testStrat:  errorstrategy.AlwaysRaise{},
			suiteStrat: errorstrategy.AlwaysRaise{},
			wantErr:    true,
			wantTests:  1,
			wantSteps:  1,
		},
		{
			name:       "ignore/raise runs to the end conditions",
			testStrat:  errorstrategy.AlwaysIgnore{},
			suiteStrat: errorstrategy.AlwaysRaise{},
			wantErr:    false,
			wantTests:  2,
			wantSteps:  4,
		},
		{
			name:       "raise/ignore retries per test",
			testStrat:  errorstrategy.AlwaysRaise{},
			suiteStrat: errorstrategy.AlwaysIgnore{},
			wantErr:    false,
			wantTests:  2,
			wantSteps:  2,
		},
		{
			name:       "ignore-asserts/raise propagates non-assertions",
			testStrat:  errorstrategy.IgnoreAssertions{},
			suiteStrat: errorstrategy.AlwaysRaise{},
			wantErr:    true,
			wantTests:  1,
			wantSteps:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := engine.Config{
				Seed:               seedPtr(1),
				TestEndCondition:   mustLength(t, 2),
				SuiteEndCondition:  mustLength(t, 2),
				TestErrorStrategy:  tt.testStrat,
				SuiteErrorStrategy: tt.suiteStrat,
			}
			eng := newEngine(t, newCat(t), cfg)
			h, runErr := eng.Run(context.Background())
			if tt.wantErr {
				require.Error(t, runErr)
			} else {
				require.NoError(t, runErr)
			}
			assert.Equal(t, tt.wantTests, h.TestCount())
			assert.Equal(t, tt.wantSteps, h.TotalSteps())
		})
	}
}
