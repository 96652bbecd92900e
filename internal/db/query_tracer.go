package db

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5"

	"github.com/gitshopapp/trackpage/internal/logging"
)

type queryTraceContextKey struct{}

type queryTrace struct {
	span    *sentry.Span
	query   string
	started time.Time
}

// queryTracer opens a sentry span per query when the caller is inside a
// transaction and logs queries slower than slowThreshold.
type queryTracer struct {
	logger        *slog.Logger
	slowThreshold time.Duration
	now           func() time.Time
}

func newQueryTracer(logger *slog.Logger, slowThreshold time.Duration) *queryTracer {
	return &queryTracer{
		logger:        logging.FromContext(context.Background(), logger).With("component", "db"),
		slowThreshold: slowThreshold,
		now:           time.Now,
	}
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	trace := &queryTrace{
		query:   normalizeQuery(data.SQL),
		started: t.now(),
	}

	if sentry.SpanFromContext(ctx) != nil {
		span := sentry.StartSpan(
			ctx,
			"db.query",
			sentry.WithDescription(trace.query),
			sentry.WithSpanOrigin(sentry.SpanOriginManual),
		)
		span.SetData("db.system", "postgresql")
		if operation := queryOperation(trace.query); operation != "" {
			span.SetData("db.operation", operation)
		}
		trace.span = span
		ctx = span.Context()
	}

	return context.WithValue(ctx, queryTraceContextKey{}, trace)
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	trace, _ := ctx.Value(queryTraceContextKey{}).(*queryTrace)
	if trace == nil {
		return
	}

	elapsed := t.now().Sub(trace.started)
	if t.slowThreshold > 0 && elapsed >= t.slowThreshold {
		logging.FromContext(ctx, t.logger).Warn("slow query",
			"operation", queryOperation(trace.query),
			"duration_ms", elapsed.Milliseconds(),
		)
	}

	span := trace.span
	if span == nil {
		return
	}

	if data.Err != nil {
		span.Status = sentry.SpanStatusInternalError
		span.SetData("db.error", data.Err.Error())
	} else {
		span.Status = sentry.SpanStatusOK
	}

	if rowsAffected := data.CommandTag.RowsAffected(); rowsAffected >= 0 {
		span.SetData("db.rows_affected", rowsAffected)
	}

	span.Finish()
}

func normalizeQuery(query string) string {
	normalized := strings.Join(strings.Fields(query), " ")
	if normalized == "" {
		return "sql.query"
	}

	const maxLen = 512
	if len(normalized) > maxLen {
		return normalized[:maxLen]
	}
	return normalized
}

func queryOperation(query string) string {
	parts := strings.Fields(query)
	if len(parts) == 0 {
		return ""
	}
	return strings.ToUpper(parts[0])
}
