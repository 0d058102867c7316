package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/osmo-tool/osmo/history"
)

// CSV renders one row per executed step, for spreadsheet analysis.
type CSV struct{}

// Render implements Renderer.
func (r *CSV) Render(h *history.History) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"test", "step_index", "step", "timestamp", "duration_seconds", "outcome", "error"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for i, tc := range h.Tests() {
		for j, log := range tc.Steps() {
			outcome := "ok"
			errMsg := ""
			if log.Failed() {
				outcome = "error"
				errMsg = log.Err.Error()
			}
			row := []string{
				strconv.Itoa(i + 1),
				strconv.Itoa(j + 1),
				log.Name,
				log.Start.Format(time.RFC3339Nano),
				fmt.Sprintf("%.6f", log.Duration.Seconds()),
				outcome,
				errMsg,
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Extension implements Renderer.
func (r *CSV) Extension() string {
	return "csv"
}
