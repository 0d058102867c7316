// Package history is the append-only record of a generation run: test
// cases, their step logs, and every error that occurred. It feeds the
// coverage queries, end-condition evaluation, and statistics.
//
// The engine is the single writer. Queries are safe on the value returned
// from a finished run and stable once the history is stopped.
//
// Import rules:
//   - CAN import: clock, errors, std lib
//   - MUST NOT import: engine, model, algorithm
package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/osmo-tool/osmo/clock"
	osmoerrors "github.com/osmo-tool/osmo/errors"
)

// History is the ordered sequence of test case records for one suite run.
type History struct {
	id    string
	cases []*TestCase
	start time.Time
	stop  time.Time // zero while the suite is running
	clk   clock.Clock
}

// New creates an empty history. The start timestamp is stamped here, so
// the engine constructs the history when it enters the SUITE phase.
func New(clk clock.Clock) *History {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &History{
		id:    uuid.NewString(),
		start: clk.Now(),
		clk:   clk,
	}
}

// ID returns the run's unique identifier.
func (h *History) ID() string {
	return h.id
}

// StartTest opens a new test case record and appends it to the sequence.
// It fails if another test case is still open; the engine seals every test
// before starting the next.
func (h *History) StartTest() (*TestCase, error) {
	if cur := h.CurrentTest(); cur != nil {
		return nil, osmoerrors.ErrTestAlreadyOpen
	}
	tc := &TestCase{
		id:    uuid.NewString(),
		start: h.clk.Now(),
		clk:   h.clk,
	}
	h.cases = append(h.cases, tc)
	return tc, nil
}

// EndCurrentTest seals the open test case record. No-op if none is open.
func (h *History) EndCurrentTest() {
	if cur := h.CurrentTest(); cur != nil {
		cur.seal()
	}
}

// AppendStep appends a step log entry to the open test case.
func (h *History) AppendStep(name string, start time.Time, duration time.Duration, stepErr error) error {
	cur := h.CurrentTest()
	if cur == nil {
		return osmoerrors.ErrNoActiveTest
	}
	return cur.appendStep(StepLog{
		Name:     name,
		Start:    start,
		Duration: duration,
		Err:      stepErr,
	})
}

// RecordError records an error that is not attached to an executed step
// (a guard failure, an empty enabled set, a hook failure) against the open
// test case so error counts stay accurate for the strategies.
func (h *History) RecordError(err error) error {
	cur := h.CurrentTest()
	if cur == nil {
		return osmoerrors.ErrNoActiveTest
	}
	return cur.recordError(err)
}

// Stop seals the open test case, if any, and stamps the suite stop time.
// Calling Stop more than once has no effect.
func (h *History) Stop() {
	if !h.stop.IsZero() {
		return
	}
	h.EndCurrentTest()
	h.stop = h.clk.Now()
}

// Stopped reports whether the suite has been stopped.
func (h *History) Stopped() bool {
	return !h.stop.IsZero()
}

// CurrentTest returns the open test case, or nil when every record is
// sealed.
func (h *History) CurrentTest() *TestCase {
	if len(h.cases) == 0 {
		return nil
	}
	last := h.cases[len(h.cases)-1]
	if last.Stopped() {
		return nil
	}
	return last
}

// Tests returns all test case records in execution order.
func (h *History) Tests() []*TestCase {
	return h.cases
}

// TestCount returns the number of test case records, open or sealed.
func (h *History) TestCount() int {
	return len(h.cases)
}

// SealedTestCount returns the number of sealed test case records.
func (h *History) SealedTestCount() int {
	n := 0
	for _, tc := range h.cases {
		if tc.Stopped() {
			n++
		}
	}
	return n
}

// TotalSteps returns the number of executed steps across all tests.
func (h *History) TotalSteps() int {
	n := 0
	for _, tc := range h.cases {
		n += tc.StepCount()
	}
	return n
}

// ErrorCount returns the number of errors recorded across all tests,
// absorbed or propagated.
func (h *History) ErrorCount() int {
	n := 0
	for _, tc := range h.cases {
		n += tc.ErrorCount()
	}
	return n
}

// StepFrequency returns the execution count per step name across the
// whole suite.
func (h *History) StepFrequency() map[string]int {
	freq := make(map[string]int)
	for _, tc := range h.cases {
		for _, log := range tc.Steps() {
			freq[log.Name]++
		}
	}
	return freq
}

// StepCount returns how many times the named step executed across the
// whole suite.
func (h *History) StepCount(name string) int {
	n := 0
	for _, tc := range h.cases {
		n += tc.CountOf(name)
	}
	return n
}

// UniqueExecutedSteps returns the distinct step names executed across the
// suite, in first-execution order.
func (h *History) UniqueExecutedSteps() []string {
	seen := make(map[string]bool)
	var names []string
	for _, tc := range h.cases {
		for _, log := range tc.Steps() {
			if !seen[log.Name] {
				seen[log.Name] = true
				names = append(names, log.Name)
			}
		}
	}
	return names
}

// CoveragePercent returns the share of catalogue step names that have
// executed at least once across the suite, in percent.
func (h *History) CoveragePercent(catalogue []string) float64 {
	return coveragePercent(h.StepFrequency(), catalogue)
}

// StartTime returns when the suite started.
func (h *History) StartTime() time.Time {
	return h.start
}

// Duration returns the suite's wall-clock duration so far, or the final
// duration once stopped.
func (h *History) Duration() time.Duration {
	if h.stop.IsZero() {
		return h.clk.Now().Sub(h.start)
	}
	return h.stop.Sub(h.start)
}

// String renders the full step trace, one test case per block.
func (h *History) String() string {
	var sb strings.Builder
	for i, tc := range h.cases {
		fmt.Fprintf(&sb, "%d. test case %.2fs\n", i+1, tc.Duration().Seconds())
		for _, log := range tc.Steps() {
			outcome := "ok"
			if log.Failed() {
				outcome = "error"
			}
			fmt.Fprintf(&sb, "%s %.3fs %s (%s)\n",
				log.Start.Format(time.RFC3339), log.Duration.Seconds(), log.Name, outcome)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// coveragePercent is shared by suite-level and test-level coverage.
func coveragePercent(freq map[string]int, catalogue []string) float64 {
	if len(catalogue) == 0 {
		return 0
	}
	covered := 0
	for _, name := range catalogue {
		if freq[name] > 0 {
			covered++
		}
	}
	return float64(covered) / float64(len(catalogue)) * 100
}
