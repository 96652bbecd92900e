package observability

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
)

// Status page lifecycle counters.
const (
	MetricPageGenerated      = "page.generated"
	MetricPageGenerateFailed = "page.generate.failed"
	MetricPageRefreshed      = "page.refreshed"
	MetricPageStaleServed    = "page.stale_served"
	MetricPageStoreFailed    = "page.store.failed"
	MetricPageShared         = "page.shared"
	MetricPageShareFailed    = "page.share.failed"
)

type meterContextKey struct{}

// WithMeter returns a context carrying the provided meter.
func WithMeter(ctx context.Context, meter sentry.Meter) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if meter == nil {
		meter = sentry.NewMeter(ctx)
	}
	return context.WithValue(ctx, meterContextKey{}, meter.WithCtx(ctx))
}

// MeterFromContext returns the request-scoped meter from context or a new one.
func MeterFromContext(ctx context.Context) sentry.Meter {
	if ctx == nil {
		ctx = context.Background()
	}
	if meter, ok := ctx.Value(meterContextKey{}).(sentry.Meter); ok && meter != nil {
		return meter.WithCtx(ctx)
	}
	return sentry.NewMeter(ctx).WithCtx(ctx)
}

// CountPage increments a page lifecycle counter, tagged with the carrier
// when one is known.
func CountPage(ctx context.Context, name, carrierCode string, extra ...attribute.Builder) {
	attrs := make([]attribute.Builder, 0, len(extra)+1)
	if carrierCode != "" {
		attrs = append(attrs, attribute.String("carrier", carrierCode))
	}
	attrs = append(attrs, extra...)
	MeterFromContext(ctx).Count(name, 1, sentry.WithAttributes(attrs...))
}
