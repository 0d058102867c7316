package report

import (
	"encoding/json"
	"time"

	"github.com/osmo-tool/osmo/history"
)

// JSON renders the complete execution data for programmatic consumers.
type JSON struct {
	// Title labels the report.
	Title string
}

type jsonReport struct {
	Title   string         `json:"title,omitempty"`
	RunID   string         `json:"run_id"`
	Summary jsonSummary    `json:"summary"`
	Tests   []jsonTestCase `json:"tests"`
}

type jsonSummary struct {
	TotalTests          int            `json:"total_tests"`
	TotalSteps          int            `json:"total_steps"`
	UniqueSteps         int            `json:"unique_steps"`
	DurationSeconds     float64        `json:"duration_seconds"`
	ErrorCount          int            `json:"error_count"`
	MostExecutedStep    string         `json:"most_executed_step,omitempty"`
	LeastExecutedStep   string         `json:"least_executed_step,omitempty"`
	AverageStepsPerTest float64        `json:"average_steps_per_test"`
	StepFrequency       map[string]int `json:"step_frequency"`
}

type jsonTestCase struct {
	Index           int        `json:"index"`
	ID              string     `json:"id"`
	DurationSeconds float64    `json:"duration_seconds"`
	StepCount       int        `json:"step_count"`
	ErrorCount      int        `json:"error_count"`
	Steps           []jsonStep `json:"steps"`
}

type jsonStep struct {
	Name            string  `json:"name"`
	Timestamp       string  `json:"timestamp"`
	DurationSeconds float64 `json:"duration_seconds"`
	HasError        bool    `json:"has_error"`
	ErrorMessage    string  `json:"error_message,omitempty"`
}

// Render implements Renderer.
func (r *JSON) Render(h *history.History) ([]byte, error) {
	stats := history.NewStatistics(h)

	doc := jsonReport{
		Title: r.Title,
		RunID: h.ID(),
		Summary: jsonSummary{
			TotalTests:          stats.TotalTests,
			TotalSteps:          stats.TotalSteps,
			UniqueSteps:         stats.UniqueSteps,
			DurationSeconds:     stats.Duration.Seconds(),
			ErrorCount:          stats.ErrorCount,
			MostExecutedStep:    stats.MostExecutedStep,
			LeastExecutedStep:   stats.LeastExecutedStep,
			AverageStepsPerTest: stats.AverageStepsPerTest,
			StepFrequency:       stats.StepFrequency,
		},
	}

	for i, tc := range h.Tests() {
		jtc := jsonTestCase{
			Index:           i + 1,
			ID:              tc.ID(),
			DurationSeconds: tc.Duration().Seconds(),
			StepCount:       tc.StepCount(),
			ErrorCount:      tc.ErrorCount(),
			Steps:           make([]jsonStep, 0, tc.StepCount()),
		}
		for _, log := range tc.Steps() {
			js := jsonStep{
				Name:            log.Name,
				Timestamp:       log.Start.Format(time.RFC3339Nano),
				DurationSeconds: log.Duration.Seconds(),
				HasError:        log.Failed(),
			}
			if log.Failed() {
				js.ErrorMessage = log.Err.Error()
			}
			jtc.Steps = append(jtc.Steps, js)
		}
		doc.Tests = append(doc.Tests, jtc)
	}

	return json.MarshalIndent(doc, "", "  ")
}

// Extension implements Renderer.
func (r *JSON) Extension() string {
	return "json"
}
