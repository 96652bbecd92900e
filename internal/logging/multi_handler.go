package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
)

const redacted = "[redacted]"

// sensitiveKeys never reach a sink in clear text. Customer contact details
// live on status pages and admin credentials pass through the auth handlers.
var sensitiveKeys = map[string]struct{}{
	"password":       {},
	"token":          {},
	"authorization":  {},
	"recipient":      {},
	"customer_email": {},
	"customer_name":  {},
	"email":          {},
}

// MultiHandler fans out slog records to multiple handlers, masking
// sensitive attributes first.
func MultiHandler(handlers ...slog.Handler) slog.Handler {
	filtered := make([]slog.Handler, 0, len(handlers))
	for _, handler := range handlers {
		if handler != nil {
			filtered = append(filtered, handler)
		}
	}
	if len(filtered) == 0 {
		return slog.NewTextHandler(io.Discard, nil)
	}
	return multiHandler(filtered)
}

type multiHandler []slog.Handler

func (h multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h multiHandler) Handle(ctx context.Context, record slog.Record) error {
	masked := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		masked.AddAttrs(redact(attr))
		return true
	})

	var handleErr error
	for _, handler := range h {
		if !handler.Enabled(ctx, masked.Level) {
			continue
		}
		handleErr = errors.Join(handleErr, handler.Handle(ctx, masked.Clone()))
	}
	return handleErr
}

func (h multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	safe := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		safe = append(safe, redact(attr))
	}
	next := make([]slog.Handler, 0, len(h))
	for _, handler := range h {
		next = append(next, handler.WithAttrs(safe))
	}
	return multiHandler(next)
}

func (h multiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, 0, len(h))
	for _, handler := range h {
		next = append(next, handler.WithGroup(name))
	}
	return multiHandler(next)
}

func redact(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() == slog.KindGroup {
		group := attr.Value.Group()
		safe := make([]any, 0, len(group))
		for _, member := range group {
			safe = append(safe, redact(member))
		}
		return slog.Group(attr.Key, safe...)
	}
	if _, ok := sensitiveKeys[strings.ToLower(attr.Key)]; ok {
		return slog.String(attr.Key, redacted)
	}
	return attr
}
