package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// newLogger builds the process logger: text records on stderr at Info (Debug
// with --verbose) and, with --log-file, every record as JSON in that file.
// The returned closer closes the log file and is never nil.
func newLogger(opts *RootOptions, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	text := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	if opts.LogFile == "" {
		return slog.New(text), nopCloser{}, nil
	}

	f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	file := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})

	return slog.New(slogmulti.Fanout(text, file)), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
