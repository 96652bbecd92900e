package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/gitshopapp/trackpage/internal/config"
	"github.com/gitshopapp/trackpage/internal/models"
	"github.com/gitshopapp/trackpage/internal/services"
	"github.com/gitshopapp/trackpage/internal/session"
)

const (
	testPassword   = "correct horse battery"
	testSigningKey = "0123456789abcdef0123456789abcdef"
	testPageID     = "0b7d2c8e-6c43-4bb7-9d0a-3b7f7c1d2e10"
)

type fakePages struct {
	page      *models.StatusPage
	err       error
	generated services.GenerateInput
	listLimit int
	deleted   string
}

func (f *fakePages) Generate(_ context.Context, in services.GenerateInput) (*models.StatusPage, error) {
	f.generated = in
	return f.page, f.err
}

func (f *fakePages) Save(_ context.Context, id string) (*models.StatusPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	page := *f.page
	page.ID = id
	page.Saved = true
	return &page, nil
}

func (f *fakePages) Get(_ context.Context, _ string) (*models.StatusPage, error) {
	return f.page, f.err
}

func (f *fakePages) Refresh(_ context.Context, _ string) (*models.StatusPage, error) {
	return f.page, f.err
}

func (f *fakePages) Delete(_ context.Context, id string) error {
	f.deleted = id
	return f.err
}

func (f *fakePages) ListSaved(_ context.Context, limit int) ([]*models.StatusPage, error) {
	f.listLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if f.page == nil {
		return []*models.StatusPage{}, nil
	}
	return []*models.StatusPage{f.page}, nil
}

type fakeSharer struct {
	enabled   bool
	err       error
	recipient string
}

func (f *fakeSharer) Enabled() bool { return f.enabled }

func (f *fakeSharer) PublicURL(id string) string {
	return "https://track.example.com/track/" + id
}

func (f *fakeSharer) SharePage(_ context.Context, _ string, recipient string) error {
	f.recipient = recipient
	return f.err
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

func testPage() *models.StatusPage {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	return &models.StatusPage{
		ID:             testPageID,
		CustomerName:   "Ada Lovelace",
		OrderNumber:    "#1042",
		TrackingNumber: "1Z999AA10123456784",
		Carrier:        "UPS",
		CarrierCode:    "UPS",
		TrackingURL:    "https://www.ups.com/track?tracknum=1Z999AA10123456784",
		Events: []models.TrackingEvent{
			{Status: models.StatusOrderConfirmed, Date: "Oct 14, 2026", Time: "9:00 AM", Completed: true, Current: true},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newTestHandlers(t *testing.T, pages PageService, sharer PageSharer) *Handlers {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auth, err := services.NewAdminAuthService(testPassword, testSigningKey, time.Hour, logger)
	if err != nil {
		t.Fatalf("NewAdminAuthService() error = %v", err)
	}
	sessions, err := session.NewMemoryStore()
	if err != nil {
		t.Fatalf("NewMemoryStore() error = %v", err)
	}
	if sharer == nil {
		sharer = &fakeSharer{}
	}

	h, err := New(Dependencies{
		Config:         &config.Config{BaseURL: "https://track.example.com"},
		Pages:          pages,
		Sharer:         sharer,
		AuthService:    auth,
		SessionManager: session.NewManager(sessions, false, time.Hour),
		Logger:         logger,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return h
}

func withPageID(req *http.Request, id string) *http.Request {
	return mux.SetURLVars(req, map[string]string{"id": id})
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestNew_RequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := New(Dependencies{Config: &config.Config{}})
	if err == nil || !strings.Contains(err.Error(), "pages is required") {
		t.Fatalf("expected pages dependency error, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	down := fakePinger{err: errors.New("dial tcp: refused")}
	tests := []struct {
		name        string
		store       Pinger
		cache       Pinger
		wantStatus  int
		wantDurable string
		wantCache   string
	}{
		{name: "no stores", wantStatus: http.StatusOK, wantDurable: "disabled", wantCache: "disabled"},
		{name: "all up", store: fakePinger{}, cache: fakePinger{}, wantStatus: http.StatusOK, wantDurable: "ok", wantCache: "ok"},
		{name: "durable store down", store: down, cache: fakePinger{}, wantStatus: http.StatusServiceUnavailable, wantDurable: "unreachable", wantCache: "ok"},
		{name: "cache down", cache: down, wantStatus: http.StatusServiceUnavailable, wantDurable: "disabled", wantCache: "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestHandlers(t, &fakePages{}, nil)
			h.durableStore = tt.store
			h.cache = tt.cache

			rec := httptest.NewRecorder()
			h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, tt.wantStatus)
			}
			body := decodeBody[map[string]string](t, rec)
			if body["durable"] != tt.wantDurable || body["cache"] != tt.wantCache {
				t.Fatalf("unexpected store states: %v", body)
			}
		})
	}
}

func TestWriteServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"validation", services.ValidationError{Message: "Order number and tracking number are required"}, http.StatusBadRequest, "Order number and tracking number are required"},
		{"tracking mismatch", services.ErrTrackingMismatch, http.StatusBadRequest, services.ErrTrackingMismatch.Error()},
		{"pickup date", errors.Join(services.ErrInvalidPickupDate), http.StatusBadRequest, services.ErrInvalidPickupDate.Error()},
		{"order not found", services.ErrOrderNotFound, http.StatusNotFound, "Order not found"},
		{"page not found", services.ErrPageNotFound, http.StatusNotFound, "Status page not found"},
		{"sharing disabled", services.ErrSharingDisabled, http.StatusServiceUnavailable, "Sharing is not configured"},
		{"upstream", errors.Join(services.ErrUpstreamUnavailable, errors.New("shopify: 502")), http.StatusBadGateway, "Order service is unavailable, try again later"},
		{"internal", errors.New("pq: connection reset"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestHandlers(t, &fakePages{}, nil)
			rec := httptest.NewRecorder()
			h.writeServiceError(rec, httptest.NewRequest(http.MethodGet, "/api/pages", nil), tt.err)

			if rec.Code != tt.wantStatus {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, tt.wantStatus)
			}
			body := decodeBody[errorResponse](t, rec)
			if body.Error != tt.wantError {
				t.Fatalf("unexpected error message: got=%q want=%q", body.Error, tt.wantError)
			}
		})
	}
}

func TestSecureCookiesFromConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  *config.Config
		want bool
	}{
		{"nil config", nil, false},
		{"https base url", &config.Config{BaseURL: "https://track.example.com"}, true},
		{"http base url", &config.Config{BaseURL: "http://localhost:8080"}, false},
		{"tls port", &config.Config{Port: "443"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SecureCookiesFromConfig(tt.cfg); got != tt.want {
				t.Fatalf("SecureCookiesFromConfig() = %v, want %v", got, tt.want)
			}
		})
	}
}
