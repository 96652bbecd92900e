package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	sentryslog "github.com/getsentry/sentry-go/slog"
	"github.com/lmittmann/tint"
)

// Options selects the sinks a process logger writes to.
type Options struct {
	Level  slog.Level
	Format string
	Stdout io.Writer
	// File, when set, receives a JSON copy of every record.
	File string
	// Sentry forwards error records to the initialized sentry hub.
	Sentry bool
}

// New builds the process logger and returns a closer for any file it opened.
func New(opts Options) (*slog.Logger, func() error, error) {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	handlers := []slog.Handler{consoleHandler(stdout, opts)}
	closer := func() error { return nil }

	if path := strings.TrimSpace(opts.File); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: opts.Level}))
		closer = f.Close
	}

	if opts.Sentry {
		handlers = append(handlers, sentryslog.Option{
			EventLevel: []slog.Level{slog.LevelError},
		}.NewSentryHandler(context.Background()))
	}

	return slog.New(MultiHandler(handlers...)), closer, nil
}

func consoleHandler(w io.Writer, opts Options) slog.Handler {
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: opts.Level})
	default:
		return tint.NewHandler(w, &tint.Options{Level: opts.Level})
	}
}
