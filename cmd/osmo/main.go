// Package main provides the entry point for the osmo CLI.
package main

import (
	"context"
	"os"

	"github.com/osmo-tool/osmo/internal/cli"
)

// Build information set via ldflags.
//
//nolint:gochecknoglobals // populated by the linker
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	ctx := context.Background()
	defer cli.CloseLogFile()
	if err := cli.Execute(ctx, cli.BuildInfo{Version: version, Commit: commit, Date: date}); err != nil {
		os.Exit(1)
	}
}
