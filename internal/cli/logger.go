package cli

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/osmo-tool/osmo/internal/config"
)

// Log rotation settings for ~/.osmo/logs/osmo.log.
const (
	logMaxSizeMB  = 10
	logMaxBackups = 3
	logMaxAgeDays = 30
)

// logFileWriter holds the rotating file writer for cleanup on shutdown.
var logFileWriter io.WriteCloser //nolint:gochecknoglobals // Needed for cleanup

// InitLogger creates and configures a zerolog.Logger based on verbosity
// flags.
//
// Log levels:
//   - verbose=true: Debug level
//   - quiet=true: Warn level
//   - default: Info level
//
// Output goes to a TTY-aware console writer (JSON when stderr is not a
// terminal or NO_COLOR is set) plus a rotating file under ~/.osmo/logs.
// If the log file cannot be created, console-only logging is used.
func InitLogger(verbose, quiet bool) zerolog.Logger {
	writer := selectOutput()

	if fileWriter, err := createLogFileWriter(); err == nil {
		logFileWriter = fileWriter
		writer = zerolog.MultiLevelWriter(writer, fileWriter)
	}

	return zerolog.New(writer).Level(selectLevel(verbose, quiet)).With().Timestamp().Logger()
}

// InitLoggerWithWriter creates a logger with a custom writer, for tests.
func InitLoggerWithWriter(verbose, quiet bool, w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(selectLevel(verbose, quiet)).With().Timestamp().Logger()
}

// CloseLogFile closes the log file writer if it was opened. Called during
// shutdown.
func CloseLogFile() {
	if logFileWriter != nil {
		_ = logFileWriter.Close()
		logFileWriter = nil
	}
}

// selectLevel maps verbosity flags to a zerolog level.
func selectLevel(verbose, quiet bool) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// selectOutput picks a console writer for TTYs and JSON otherwise.
func selectOutput() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	}
	return os.Stderr
}

// createLogFileWriter creates the rotating file writer under the osmo
// home directory.
func createLogFileWriter() (io.WriteCloser, error) {
	home, err := osmoHome()
	if err != nil {
		return nil, err
	}
	logDir := filepath.Join(home, "logs")
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return nil, err
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "osmo.log"),
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAge:     logMaxAgeDays,
	}, nil
}

// osmoHome returns the osmo home directory, honoring OSMO_HOME.
func osmoHome() (string, error) {
	if home := os.Getenv("OSMO_HOME"); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, config.ConfigDirName), nil
}
