package history

import (
	"fmt"
	"strings"
	"time"
)

// Statistics is a structured summary of a run, for programmatic access
// instead of formatted strings.
type Statistics struct {
	// TotalTests is the number of test cases executed.
	TotalTests int

	// TotalSteps is the number of steps executed across all tests.
	TotalSteps int

	// UniqueSteps is the number of distinct step names executed.
	UniqueSteps int

	// Duration is the total wall-clock duration of the run.
	Duration time.Duration

	// ErrorCount is the total number of errors, absorbed or propagated.
	ErrorCount int

	// MostExecutedStep is the most frequently executed step name, empty
	// when no steps ran.
	MostExecutedStep string

	// LeastExecutedStep is the least frequently executed step name, empty
	// when no steps ran.
	LeastExecutedStep string

	// AverageStepsPerTest is TotalSteps divided by TotalTests.
	AverageStepsPerTest float64

	// StepFrequency is the execution count per step name.
	StepFrequency map[string]int

	// StepMeanDuration is the mean execution time per step name.
	StepMeanDuration map[string]time.Duration
}

// NewStatistics derives statistics from a history. The history does not
// need to be stopped, but a stopped history yields stable values.
func NewStatistics(h *History) Statistics {
	freq := make(map[string]int)
	totals := make(map[string]time.Duration)
	for _, tc := range h.Tests() {
		for _, log := range tc.Steps() {
			freq[log.Name]++
			totals[log.Name] += log.Duration
		}
	}

	mean := make(map[string]time.Duration, len(freq))
	for name, total := range totals {
		mean[name] = total / time.Duration(freq[name])
	}

	var most, least string
	for name, count := range freq {
		if most == "" || count > freq[most] || (count == freq[most] && name < most) {
			most = name
		}
		if least == "" || count < freq[least] || (count == freq[least] && name < least) {
			least = name
		}
	}

	avg := 0.0
	if h.TestCount() > 0 {
		avg = float64(h.TotalSteps()) / float64(h.TestCount())
	}

	return Statistics{
		TotalTests:          h.TestCount(),
		TotalSteps:          h.TotalSteps(),
		UniqueSteps:         len(freq),
		Duration:            h.Duration(),
		ErrorCount:          h.ErrorCount(),
		MostExecutedStep:    most,
		LeastExecutedStep:   least,
		AverageStepsPerTest: avg,
		StepFrequency:       freq,
		StepMeanDuration:    mean,
	}
}

// String renders a human-readable summary block.
func (s Statistics) String() string {
	var sb strings.Builder
	sb.WriteString("Run statistics:\n")
	fmt.Fprintf(&sb, "  Tests: %d\n", s.TotalTests)
	fmt.Fprintf(&sb, "  Steps: %d\n", s.TotalSteps)
	fmt.Fprintf(&sb, "  Unique steps: %d\n", s.UniqueSteps)
	fmt.Fprintf(&sb, "  Duration: %s\n", s.Duration)
	fmt.Fprintf(&sb, "  Errors: %d\n", s.ErrorCount)
	fmt.Fprintf(&sb, "  Avg steps/test: %.2f\n", s.AverageStepsPerTest)
	if s.MostExecutedStep != "" {
		fmt.Fprintf(&sb, "  Most executed: %s (%d times)\n", s.MostExecutedStep, s.StepFrequency[s.MostExecutedStep])
	}
	if s.LeastExecutedStep != "" {
		fmt.Fprintf(&sb, "  Least executed: %s (%d times)\n", s.LeastExecutedStep, s.StepFrequency[s.LeastExecutedStep])
	}
	return sb.String()
}
