package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/osmo-tool/osmo/clock"
	osmoerrors "github.com/osmo-tool/osmo/errors"
	"github.com/osmo-tool/osmo/errorstrategy"
	"github.com/osmo-tool/osmo/history"
	"github.com/osmo-tool/osmo/model"
)

// Engine generates and executes step sequences against a model catalogue.
// It is single-threaded: one test at a time, one step at a time. Run may
// be called repeatedly; every call re-seeds the random source, so runs
// with the same seed and model reproduce step by step.
type Engine struct {
	cat    *model.Catalogue
	cfg    Config
	logger zerolog.Logger
	clk    clock.Clock
	seed   int64

	// Per-run state, reset at the top of Run.
	phase Phase
	rng   *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for timestamps and Time end conditions.
// Tests pass a mock clock to control time.
func WithClock(clk clock.Clock) Option {
	return func(e *Engine) {
		e.clk = clk
	}
}

// New builds an engine over an introspected catalogue. The seed is
// resolved here: either taken from the config or derived from the current
// time and recorded.
func New(cat *model.Catalogue, cfg Config, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cat == nil {
		return nil, osmoerrors.NewConfigurationError("catalogue is nil")
	}

	e := &Engine{
		cat:    cat,
		cfg:    cfg.withDefaults(),
		logger: logger,
		clk:    clock.RealClock{},
		phase:  PhaseIdle,
	}
	for _, opt := range opts {
		opt(e)
	}

	if cfg.Seed != nil {
		e.seed = *cfg.Seed
	} else {
		e.seed = e.clk.Now().UnixNano()
	}
	e.logger.Info().
		Int64("seed", e.seed).
		Int("steps", cat.Len()).
		Msg("engine configured")

	return e, nil
}

// Seed returns the resolved seed for this engine.
func (e *Engine) Seed() int64 {
	return e.seed
}

// Run executes one suite and returns the sealed history. When the error
// cascade propagates, the held failure is returned alongside the history;
// the history is complete and queryable either way.
func (e *Engine) Run(ctx context.Context) (*history.History, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.phase = PhaseIdle
	e.rng = rand.New(rand.NewSource(e.seed)) //nolint:gosec // reproducibility requires a seeded PRNG
	if err := e.transition(PhaseSuite); err != nil {
		return nil, err
	}
	h := history.New(e.clk)

	e.logger.Info().
		Str("run_id", h.ID()).
		Int64("seed", e.seed).
		Msg("suite starting")

	if err := e.cat.RunBeforeSuite(); err != nil {
		// The matching after_suite still runs so user resources are
		// released, but a failed suite setup always propagates.
		hookErr := &osmoerrors.HookFailedError{Hook: "before_suite", Err: err}
		e.finishSuite(h)
		return h, hookErr
	}

	suiteErr := e.runSuiteLoop(ctx, h)

	if afterErr := e.cat.RunAfterSuite(); afterErr != nil && suiteErr == nil {
		suiteErr = &osmoerrors.HookFailedError{Hook: "after_suite", Err: afterErr}
	}
	if err := e.transition(PhaseIdle); err != nil {
		return h, err
	}
	h.Stop()

	stats := history.NewStatistics(h)
	e.logger.Info().
		Str("run_id", h.ID()).
		Int("tests", stats.TotalTests).
		Int("steps", stats.TotalSteps).
		Int("errors", stats.ErrorCount).
		Dur("duration", stats.Duration).
		Msg("suite finished")

	return h, suiteErr
}

// finishSuite runs suite teardown on the before_suite error path.
func (e *Engine) finishSuite(h *history.History) {
	if err := e.cat.RunAfterSuite(); err != nil {
		e.logger.Warn().Err(err).Msg("after_suite failed during suite-setup cleanup")
	}
	if err := e.transition(PhaseIdle); err != nil {
		e.logger.Warn().Err(err).Msg("phase bookkeeping failed during suite-setup cleanup")
	}
	h.Stop()
}

// runSuiteLoop drives tests until the suite end condition fires or an
// error propagates past the suite strategy. Entered and left in SUITE.
func (e *Engine) runSuiteLoop(ctx context.Context, h *history.History) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.cfg.SuiteEndCondition.EndSuite(h) {
			e.logger.Debug().Msg("suite end condition satisfied")
			return nil
		}

		if _, err := h.StartTest(); err != nil {
			return err
		}
		if err := e.transition(PhaseTest); err != nil {
			return err
		}
		testIndex := h.TestCount()
		e.logger.Debug().Int("test_index", testIndex).Msg("test starting")

		testErr := e.runTest(ctx, h)

		// after_test always runs, even when the test held an error.
		var afterErr error
		if err := e.cat.RunAfterTest(); err != nil {
			afterErr = &osmoerrors.HookFailedError{Hook: "after_test", Err: err}
			if recErr := h.RecordError(afterErr); recErr != nil {
				e.logger.Warn().Err(recErr).Msg("could not record after_test error")
			}
		}

		held := testErr
		if held == nil {
			held = afterErr
		}
		if held != nil {
			if stop, err := e.decideSuiteError(h, held, testErr != nil); stop {
				h.EndCurrentTest()
				if terr := e.transition(PhaseSuite); terr != nil {
					return terr
				}
				return err
			}
			e.logger.Debug().Err(held).Int("test_index", testIndex).Msg("suite strategy absorbed error")
		}

		h.EndCurrentTest()
		if err := e.transition(PhaseSuite); err != nil {
			return err
		}
		e.logger.Debug().Int("test_index", testIndex).Msg("test sealed")
	}
}

// decideSuiteError applies the suite half of the cascade to an error that
// escaped a test. Interrupts are never absorbed, and StopOnFail overrides
// the strategy for propagated test errors.
func (e *Engine) decideSuiteError(h *history.History, held error, fromTest bool) (bool, error) {
	if isInterrupt(held) {
		return true, held
	}
	if e.cfg.StopOnFail && fromTest {
		e.logger.Debug().Err(held).Msg("stop-on-fail: ending suite")
		return true, held
	}
	decision := e.cfg.SuiteErrorStrategy.OnSuiteError(held, h)
	e.logger.Debug().
		Err(held).
		Str("decision", decision.String()).
		Msg("suite error strategy consulted")
	if decision == errorstrategy.Propagate {
		return true, held
	}
	return false, nil
}

// runTest drives the step loop for one test case. Entered and left in
// TEST. The returned error is the one the test level propagated; nil
// means the test ended cleanly (end condition, or stop-test-on-exception
// cutting it short with the error already absorbed).
func (e *Engine) runTest(ctx context.Context, h *history.History) error {
	if err := e.cat.RunBeforeTest(); err != nil {
		hookErr := &osmoerrors.HookFailedError{Hook: "before_test", Err: err}
		e.recordTestError(h, hookErr)
		if done, routed := e.routeTestError(h, hookErr); done {
			return routed
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		stepErr := e.generateStep(h)
		if stepErr != nil {
			if done, routed := e.routeTestError(h, stepErr); done {
				return routed
			}
		}

		if e.cfg.TestEndCondition.EndTest(h) {
			e.logger.Debug().Msg("test end condition satisfied")
			return nil
		}
	}
}

// routeTestError applies the test half of the cascade. done=true ends the
// test; the returned error is non-nil when it must continue up to the
// suite level.
func (e *Engine) routeTestError(h *history.History, stepErr error) (done bool, _ error) {
	if isInterrupt(stepErr) {
		return true, stepErr
	}

	decision := e.cfg.TestErrorStrategy.OnTestError(stepErr, h)
	e.logger.Debug().
		Err(stepErr).
		Str("decision", decision.String()).
		Msg("test error strategy consulted")

	if decision == errorstrategy.Propagate {
		return true, stepErr
	}

	// Absorbed. StopTestOnException still cuts the test short for
	// non-assertion errors, without handing the error to the suite level.
	if e.cfg.StopTestOnException && !osmoerrors.IsAssertion(stepErr) {
		e.logger.Debug().Err(stepErr).Msg("stop-test-on-exception: ending test")
		return true, nil
	}
	return false, nil
}

// generateStep performs one iteration of the inner loop: evaluate guards,
// run the general before hook, select a step, execute it with its pre and
// post hooks inside one guarded region, run the general after hook, and
// append the step record. The returned error is whatever the test level
// must route; nil means a clean step.
func (e *Engine) generateStep(h *history.History) error {
	enabled, guardErr := e.cat.EnabledSteps()
	if guardErr != nil {
		// A guard failure is a test-level step error with no step executed.
		e.recordTestError(h, guardErr)
		return guardErr
	}
	if len(enabled) == 0 {
		noSteps := &osmoerrors.NoAvailableStepsError{Test: h.TestCount()}
		e.recordTestError(h, noSteps)
		return noSteps
	}

	if err := e.cat.RunBeforeStep(); err != nil {
		hookErr := &osmoerrors.HookFailedError{Hook: "before", Err: err}
		e.recordTestError(h, hookErr)
		// The matching after hook still runs.
		if afterErr := e.cat.RunAfterStep(); afterErr != nil {
			e.logger.Warn().Err(afterErr).Msg("after hook failed during before-hook cleanup")
		}
		return hookErr
	}

	if err := e.transition(PhaseStep); err != nil {
		return err
	}

	step, chooseErr := e.cfg.Algorithm.Choose(e.rng, h, enabled)
	if chooseErr != nil {
		// Selection failure (a broken computed weight): no step executed.
		e.recordTestError(h, chooseErr)
		if afterErr := e.cat.RunAfterStep(); afterErr != nil {
			e.logger.Warn().Err(afterErr).Msg("after hook failed during selection cleanup")
		}
		if err := e.transition(PhaseTest); err != nil {
			return err
		}
		return chooseErr
	}

	e.logger.Debug().Str("step_name", step.Name()).Msg("executing step")
	start := e.clk.Now()
	rawErr := e.executeGuarded(step)
	duration := e.clk.Now().Sub(start)

	var stepErr error
	if rawErr != nil {
		stepErr = &osmoerrors.StepFailedError{
			Test: h.TestCount(),
			Step: step.Name(),
			Err:  rawErr,
		}
	}

	// The general after hook runs even when the step raised.
	afterErr := e.cat.RunAfterStep()

	if err := h.AppendStep(step.Name(), start, duration, stepErr); err != nil {
		return err
	}
	if err := e.transition(PhaseTest); err != nil {
		return err
	}

	if stepErr != nil {
		e.logger.Warn().
			Str("step_name", step.Name()).
			Int64("duration_ms", duration.Milliseconds()).
			Err(rawErr).
			Msg("step failed")
		return stepErr
	}
	e.logger.Debug().
		Str("step_name", step.Name()).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("step completed")

	if afterErr != nil {
		hookErr := &osmoerrors.HookFailedError{Hook: "after", Err: afterErr}
		e.recordTestError(h, hookErr)
		return hookErr
	}
	return nil
}

// executeGuarded runs pre_X, the step, and post_X as one guarded region:
// the first failure wins and the rest of the region is skipped. Failures
// in either hook count as step failures.
func (e *Engine) executeGuarded(step *model.Step) error {
	if pre := step.PreHook(); pre != nil {
		if err := model.RunHook(pre); err != nil {
			return fmt.Errorf("pre-hook: %w", err)
		}
	}
	if err := step.Execute(); err != nil {
		return err
	}
	if post := step.PostHook(); post != nil {
		if err := model.RunHook(post); err != nil {
			return fmt.Errorf("post-hook: %w", err)
		}
	}
	return nil
}

// recordTestError stores a non-step error against the open test so the
// AllowCount scopes stay accurate.
func (e *Engine) recordTestError(h *history.History, err error) {
	if recErr := h.RecordError(err); recErr != nil {
		e.logger.Warn().Err(recErr).Msg("could not record test error")
	}
}

// isInterrupt reports whether err is an external interruption. Interrupts
// are never absorbed by any strategy; cleanup hooks still run before the
// error reaches the caller.
func isInterrupt(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
