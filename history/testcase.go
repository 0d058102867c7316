package history

import (
	"time"

	"github.com/osmo-tool/osmo/clock"
	osmoerrors "github.com/osmo-tool/osmo/errors"
)

// StepLog records one executed step: name, start timestamp, duration, and
// outcome. Entries are never mutated after append.
type StepLog struct {
	Name     string
	Start    time.Time
	Duration time.Duration
	Err      error
}

// Failed reports whether the step ended in an error.
func (l StepLog) Failed() bool {
	return l.Err != nil
}

// TestCase records one test: an ordered step log, timestamps, error
// count, and the sealed flag. The stopped flag transitions false to true
// exactly once; steps may not be appended after sealing.
type TestCase struct {
	id          string
	steps       []StepLog
	otherErrors []error // errors with no executed step: guards, hooks, empty enabled set
	start       time.Time
	end         time.Time
	stopped     bool
	clk         clock.Clock
}

// ID returns the test case's unique identifier.
func (tc *TestCase) ID() string {
	return tc.id
}

// Steps returns the ordered step log.
func (tc *TestCase) Steps() []StepLog {
	return tc.steps
}

// StepCount returns the number of executed steps.
func (tc *TestCase) StepCount() int {
	return len(tc.steps)
}

// CountOf returns how many times the named step executed in this test.
func (tc *TestCase) CountOf(name string) int {
	n := 0
	for _, log := range tc.steps {
		if log.Name == name {
			n++
		}
	}
	return n
}

// Used reports whether the named step executed at least once.
func (tc *TestCase) Used(name string) bool {
	return tc.CountOf(name) > 0
}

// UniqueSteps returns the distinct step names executed in this test, in
// first-execution order.
func (tc *TestCase) UniqueSteps() []string {
	seen := make(map[string]bool)
	var names []string
	for _, log := range tc.steps {
		if !seen[log.Name] {
			seen[log.Name] = true
			names = append(names, log.Name)
		}
	}
	return names
}

// CoveragePercent returns the share of catalogue step names executed in
// this test alone, in percent.
func (tc *TestCase) CoveragePercent(catalogue []string) float64 {
	freq := make(map[string]int, len(tc.steps))
	for _, log := range tc.steps {
		freq[log.Name]++
	}
	return coveragePercent(freq, catalogue)
}

// ErrorCount returns how many errors this test recorded: failed steps
// plus errors that never reached a step.
func (tc *TestCase) ErrorCount() int {
	n := len(tc.otherErrors)
	for _, log := range tc.steps {
		if log.Failed() {
			n++
		}
	}
	return n
}

// Errors returns the recorded non-step errors.
func (tc *TestCase) Errors() []error {
	return tc.otherErrors
}

// Stopped reports whether the record is sealed.
func (tc *TestCase) Stopped() bool {
	return tc.stopped
}

// StartTime returns when the test started.
func (tc *TestCase) StartTime() time.Time {
	return tc.start
}

// EndTime returns when the test was sealed. Zero while open.
func (tc *TestCase) EndTime() time.Time {
	return tc.end
}

// Duration returns the wall-clock duration so far, or the final duration
// once sealed.
func (tc *TestCase) Duration() time.Duration {
	if tc.stopped {
		return tc.end.Sub(tc.start)
	}
	return tc.clk.Now().Sub(tc.start)
}

func (tc *TestCase) appendStep(log StepLog) error {
	if tc.stopped {
		return osmoerrors.ErrTestSealed
	}
	tc.steps = append(tc.steps, log)
	return nil
}

func (tc *TestCase) recordError(err error) error {
	if tc.stopped {
		return osmoerrors.ErrTestSealed
	}
	tc.otherErrors = append(tc.otherErrors, err)
	return nil
}

func (tc *TestCase) seal() {
	if tc.stopped {
		return
	}
	tc.stopped = true
	tc.end = tc.clk.Now()
}
