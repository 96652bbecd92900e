package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewHTTPClientSetsUserAgent(t *testing.T) {
	t.Parallel()

	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewHTTPClient(time.Second, "example.myshopify.com")
	if client.Timeout != time.Second {
		t.Fatalf("unexpected timeout %v", client.Timeout)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	_ = resp.Body.Close()

	if got != userAgent {
		t.Fatalf("unexpected user agent: got=%q want=%q", got, userAgent)
	}
}

func TestMeterFromContext(t *testing.T) {
	t.Parallel()

	if MeterFromContext(context.Background()) == nil {
		t.Fatalf("expected a fallback meter")
	}
	ctx := WithMeter(context.Background(), nil)
	if MeterFromContext(ctx) == nil {
		t.Fatalf("expected the context meter")
	}
	CountPage(ctx, MetricPageGenerated, "UPS")
}
