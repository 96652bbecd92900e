package observability

import (
	"net/http"
	"time"

	sentryhttpclient "github.com/getsentry/sentry-go/httpclient"
)

const userAgent = "trackpage/1.0"

// defaultTraceTargets covers every shop on the Shopify Admin API.
var defaultTraceTargets = []string{"myshopify.com"}

// WrapRoundTripper instruments base with sentry spans and only propagates
// trace headers to traceTargets.
func WrapRoundTripper(base http.RoundTripper, traceTargets ...string) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if len(traceTargets) == 0 {
		traceTargets = defaultTraceTargets
	}
	return sentryhttpclient.NewSentryRoundTripper(
		userAgentTransport{base: base},
		sentryhttpclient.WithTracePropagationTargets(traceTargets),
	)
}

// NewHTTPClient returns an instrumented client for calls to the order backend.
func NewHTTPClient(timeout time.Duration, traceTargets ...string) *http.Client {
	client := &http.Client{
		Transport: WrapRoundTripper(http.DefaultTransport, traceTargets...),
	}
	if timeout > 0 {
		client.Timeout = timeout
	}
	return client
}

type userAgentTransport struct {
	base http.RoundTripper
}

func (t userAgentTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if r.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(r)
	}
	clone := r.Clone(r.Context())
	clone.Header.Set("User-Agent", userAgent)
	return t.base.RoundTrip(clone)
}
