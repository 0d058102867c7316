package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/osmo-tool/osmo/history"
)

// Summary styles, kept intentionally plain so non-TTY output degrades
// gracefully.
//
//nolint:gochecknoglobals // read-only render styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Faint(true).Width(18)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	columnStyle = lipgloss.NewStyle().PaddingRight(2)
)

// renderSummary formats the run statistics for the terminal.
func renderSummary(stats history.Statistics, seed int64) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Run summary"))
	sb.WriteString("\n")
	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(label))
		sb.WriteString(value)
		sb.WriteString("\n")
	}
	row("Seed", fmt.Sprintf("%d", seed))
	row("Tests", fmt.Sprintf("%d", stats.TotalTests))
	row("Steps", fmt.Sprintf("%d", stats.TotalSteps))
	row("Unique steps", fmt.Sprintf("%d", stats.UniqueSteps))
	row("Duration", stats.Duration.String())
	if stats.ErrorCount > 0 {
		row("Errors", errorStyle.Render(fmt.Sprintf("%d", stats.ErrorCount)))
	} else {
		row("Errors", okStyle.Render("0"))
	}

	if len(stats.StepFrequency) > 0 {
		sb.WriteString("\n")
		sb.WriteString(titleStyle.Render("Step frequency"))
		sb.WriteString("\n")
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
			sb.WriteString(columnStyle.Render(labelStyle.Render(name)))
			sb.WriteString(fmt.Sprintf("%d\n", stats.StepFrequency[name]))
		}
	}

	return sb.String()
}
