package logging

import (
	"context"
	"io"
	"log/slog"
)

type contextKey struct{}

// Attribute keys shared by every component that logs about a status page.
const (
	PageIDKey      = "page_id"
	OrderNumberKey = "order_number"
	CarrierKey     = "carrier"
)

// WithLogger returns a context that carries the provided logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, ensureLogger(logger))
}

// WithPage scopes the context logger to a single status page so that every
// record written while serving it carries the page id.
func WithPage(ctx context.Context, fallback *slog.Logger, pageID string) context.Context {
	if pageID == "" {
		return WithLogger(ctx, FromContext(ctx, fallback))
	}
	return WithLogger(ctx, FromContext(ctx, fallback).With(PageIDKey, pageID))
}

// FromContext returns the logger stored in ctx, then fallback, then a
// discarding logger.
func FromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return ensureLogger(fallback)
}

func ensureLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
