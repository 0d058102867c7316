package report

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/osmo-tool/osmo/history"
)

// Markdown renders a human-readable summary document.
type Markdown struct {
	// Title is the document heading.
	Title string
}

// Render implements Renderer.
func (r *Markdown) Render(h *history.History) ([]byte, error) {
	title := r.Title
	if title == "" {
		title = "Run Report"
	}
	stats := history.NewStatistics(h)
	// NoLower keeps camel-cased step names intact: insertCoin -> InsertCoin.
	caser := cases.Title(language.English, cases.NoLower)

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Tests | %d |\n", stats.TotalTests)
	fmt.Fprintf(&sb, "| Steps | %d |\n", stats.TotalSteps)
	fmt.Fprintf(&sb, "| Unique steps | %d |\n", stats.UniqueSteps)
	fmt.Fprintf(&sb, "| Errors | %d |\n", stats.ErrorCount)
	fmt.Fprintf(&sb, "| Duration | %s |\n", stats.Duration)
	fmt.Fprintf(&sb, "| Avg steps/test | %.2f |\n\n", stats.AverageStepsPerTest)

	if len(stats.StepFrequency) > 0 {
		sb.WriteString("## Step Frequency\n\n")
		sb.WriteString("| Step | Count | Mean Duration |\n|---|---|---|\n")
		names := make([]string, 0, len(stats.StepFrequency))
		for name := range stats.StepFrequency {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if stats.StepFrequency[names[i]] != stats.StepFrequency[names[j]] {
				return stats.StepFrequency[names[i]] > stats.StepFrequency[names[j]]
			}
			return names[i] < names[j]
		})
		for _, name := range names {
			fmt.Fprintf(&sb, "| %s | %d | %s |\n",
				caser.String(name), stats.StepFrequency[name], stats.StepMeanDuration[name])
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Test Cases\n\n")
	for i, tc := range h.Tests() {
		fmt.Fprintf(&sb, "### Test %d\n\n", i+1)
		fmt.Fprintf(&sb, "%d steps, %d errors, %s\n\n", tc.StepCount(), tc.ErrorCount(), tc.Duration())
		for _, log := range tc.Steps() {
			marker := "ok"
			if log.Failed() {
				marker = fmt.Sprintf("error: %v", log.Err)
			}
			fmt.Fprintf(&sb, "- `%s` (%s) %s\n", log.Name, log.Duration, marker)
		}
		sb.WriteString("\n")
	}

	return []byte(sb.String()), nil
}

// Extension implements Renderer.
func (r *Markdown) Extension() string {
	return "md"
}
