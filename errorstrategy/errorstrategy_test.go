package errorstrategy_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmo-tool/osmo/clock"
	osmoerrors "github.com/osmo-tool/osmo/errors"
	"github.com/osmo-tool/osmo/errorstrategy"
	"github.com/osmo-tool/osmo/history"
)

func emptyHistory(t *testing.T) *history.History {
	t.Helper()
	h := history.New(clock.NewMock(time.Unix(0, 0)))
	_, err := h.StartTest()
	require.NoError(t, err)
	return h
}

// TestAlwaysRaise propagates everything at both levels.
func TestAlwaysRaise(t *testing.T) {
	s := errorstrategy.AlwaysRaise{}
	h := emptyHistory(t)
	err := errors.New("boom")
	assert.Equal(t, errorstrategy.Propagate, s.OnTestError(err, h))
	assert.Equal(t, errorstrategy.Propagate, s.OnSuiteError(err, h))
}

// TestAlwaysIgnore absorbs everything at both levels.
func TestAlwaysIgnore(t *testing.T) {
	s := errorstrategy.AlwaysIgnore{}
	h := emptyHistory(t)
	err := errors.New("boom")
	assert.Equal(t, errorstrategy.Absorb, s.OnTestError(err, h))
	assert.Equal(t, errorstrategy.Absorb, s.OnSuiteError(err, h))
}

// TestIgnoreAssertions absorbs assertion failures only, including when
// wrapped by the engine's step failure type.
func TestIgnoreAssertions(t *testing.T) {
	s := errorstrategy.IgnoreAssertions{}
	h := emptyHistory(t)

	plain := errors.New("io failure")
	assertion := osmoerrors.Assertionf("value was %d", 3)
	wrapped := &osmoerrors.StepFailedError{Test: 1, Step: "s", Err: assertion}

	assert.Equal(t, errorstrategy.Propagate, s.OnTestError(plain, h))
	assert.Equal(t, errorstrategy.Absorb, s.OnTestError(assertion, h))
	assert.Equal(t, errorstrategy.Absorb, s.OnTestError(wrapped, h))
	assert.Equal(t, errorstrategy.Propagate, s.OnSuiteError(plain, h))
	assert.Equal(t, errorstrategy.Absorb, s.OnSuiteError(wrapped, h))
}

// TestAllowCount_Threshold verifies exactly the first n errors in scope
// absorb and the (n+1)-th propagates. The history already contains the
// error under decision when the strategy is consulted.
func TestAllowCount_Threshold(t *testing.T) {
	t.Run("construction", func(t *testing.T) {
		_, err := errorstrategy.NewAllowCount(-1)
		assert.ErrorIs(t, err, osmoerrors.ErrConfiguration)
		_, err = errorstrategy.NewAllowCount(0)
		assert.NoError(t, err)
	})

	t.Run("test scope", func(t *testing.T) {
		s, err := errorstrategy.NewAllowCount(2)
		require.NoError(t, err)

		clk := clock.NewMock(time.Unix(0, 0))
		h := history.New(clk)
		_, err = h.StartTest()
		require.NoError(t, err)

		boom := errors.New("boom")
		for i := 1; i <= 2; i++ {
			require.NoError(t, h.AppendStep("s", clk.Now(), 0, boom))
			assert.Equal(t, errorstrategy.Absorb, s.OnTestError(boom, h), "error %d", i)
		}
		require.NoError(t, h.AppendStep("s", clk.Now(), 0, boom))
		assert.Equal(t, errorstrategy.Propagate, s.OnTestError(boom, h), "third error propagates")
	})

	t.Run("test scope resets per test", func(t *testing.T) {
		s, err := errorstrategy.NewAllowCount(1)
		require.NoError(t, err)

		clk := clock.NewMock(time.Unix(0, 0))
		h := history.New(clk)
		_, err = h.StartTest()
		require.NoError(t, err)
		boom := errors.New("boom")
		require.NoError(t, h.AppendStep("s", clk.Now(), 0, boom))
		assert.Equal(t, errorstrategy.Absorb, s.OnTestError(boom, h))
		h.EndCurrentTest()

		_, err = h.StartTest()
		require.NoError(t, err)
		require.NoError(t, h.AppendStep("s", clk.Now(), 0, boom))
		assert.Equal(t, errorstrategy.Absorb, s.OnTestError(boom, h),
			"the counter is scoped to the current test")
	})

	t.Run("suite scope accumulates", func(t *testing.T) {
		s, err := errorstrategy.NewAllowCount(1)
		require.NoError(t, err)

		clk := clock.NewMock(time.Unix(0, 0))
		h := history.New(clk)
		boom := errors.New("boom")

		_, err = h.StartTest()
		require.NoError(t, err)
		require.NoError(t, h.AppendStep("s", clk.Now(), 0, boom))
		assert.Equal(t, errorstrategy.Absorb, s.OnSuiteError(boom, h))
		h.EndCurrentTest()

		_, err = h.StartTest()
		require.NoError(t, err)
		require.NoError(t, h.AppendStep("s", clk.Now(), 0, boom))
		assert.Equal(t, errorstrategy.Propagate, s.OnSuiteError(boom, h),
			"the suite counter spans tests")
	})

	t.Run("non-step errors count", func(t *testing.T) {
		s, err := errorstrategy.NewAllowCount(0)
		require.NoError(t, err)

		h := emptyHistory(t)
		nas := &osmoerrors.NoAvailableStepsError{Test: 1}
		require.NoError(t, h.RecordError(nas))
		assert.Equal(t, errorstrategy.Propagate, s.OnTestError(nas, h))
	})
}

// TestDecision_String covers the log formatting.
func TestDecision_String(t *testing.T) {
	assert.Equal(t, "propagate", errorstrategy.Propagate.String())
	assert.Equal(t, "absorb", errorstrategy.Absorb.String())
	assert.Equal(t, "unknown", errorstrategy.Decision(99).String())
}
