// Package report renders a finished run's history into machine- and
// human-readable documents. Renderers only consume the public history
// query surface, so anything that can produce a History can be reported.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	osmoerrors "github.com/osmo-tool/osmo/errors"
	"github.com/osmo-tool/osmo/history"
)

// Renderer turns a history into one document.
type Renderer interface {
	// Render produces the document bytes.
	Render(h *history.History) ([]byte, error)

	// Extension returns the file extension for this format, without dot.
	Extension() string
}

// Formats lists the supported format names in stable order.
func Formats() []string {
	return []string{"json", "junit", "markdown", "csv"}
}

// NewRenderer resolves a format name to its renderer. The title is used
// by formats that carry one.
func NewRenderer(format, title string) (Renderer, error) {
	switch format {
	case "json":
		return &JSON{Title: title}, nil
	case "junit":
		return &JUnit{Title: title}, nil
	case "markdown":
		return &Markdown{Title: title}, nil
	case "csv":
		return &CSV{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (valid: %v)", osmoerrors.ErrInvalidOutputFormat, format, Formats())
	}
}

// WriteAll renders the requested formats concurrently and writes each to
// <dir>/<base>.<ext>. The first failure cancels the remaining renders.
func WriteAll(ctx context.Context, h *history.History, dir, base, title string, formats []string) error {
	renderers := make(map[string]Renderer, len(formats))
	for _, format := range formats {
		r, err := NewRenderer(format, title)
		if err != nil {
			return err
		}
		renderers[format] = r
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range renderers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := r.Render(h)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, base+"."+r.Extension())
			if err := os.WriteFile(path, data, 0o600); err != nil {
				return fmt.Errorf("failed to write report %s: %w", path, err)
			}
			return nil
		})
	}
	return g.Wait()
}
