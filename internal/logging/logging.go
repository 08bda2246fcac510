// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger is the global slog instance for the application
var Logger *slog.Logger

// Options selects the log level and destination. File "stderr" logs to
// the terminal; an empty File discards everything.
type Options struct {
	Level string
	File  string
}

// ParseLevel maps debug, info, warn and error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// Init initializes the logging system. Uses text format for human
// readability. The returned closer releases the log file.
func Init(opts Options) (io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var (
		out    io.Writer = io.Discard
		closer io.Closer = nopCloser{}
	)
	switch opts.File {
	case "":
	case "stderr":
		out = os.Stderr
	default:
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, err
		}
		// Open log file in append mode
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		out, closer = file, file
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})

	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	// Redirect standard log package output to the same destination
	log.SetOutput(out)
	log.SetFlags(log.LstdFlags)

	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
