package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gitshopapp/trackpage/internal/config"
	"github.com/gitshopapp/trackpage/internal/handlers"
	"github.com/gitshopapp/trackpage/internal/models"
	"github.com/gitshopapp/trackpage/internal/services"
	"github.com/gitshopapp/trackpage/internal/session"
)

const routePageID = "0b7d2c8e-6c43-4bb7-9d0a-3b7f7c1d2e10"

type stubPages struct{}

func (stubPages) Generate(context.Context, services.GenerateInput) (*models.StatusPage, error) {
	return &models.StatusPage{ID: routePageID}, nil
}

func (stubPages) Save(context.Context, string) (*models.StatusPage, error) {
	return &models.StatusPage{ID: routePageID, Saved: true}, nil
}

func (stubPages) Get(_ context.Context, id string) (*models.StatusPage, error) {
	if id != routePageID {
		return nil, services.ErrPageNotFound
	}
	return &models.StatusPage{ID: routePageID, OrderNumber: "#1042"}, nil
}

func (stubPages) Refresh(context.Context, string) (*models.StatusPage, error) {
	return &models.StatusPage{ID: routePageID}, nil
}

func (stubPages) Delete(context.Context, string) error { return nil }

func (stubPages) ListSaved(context.Context, int) ([]*models.StatusPage, error) {
	return []*models.StatusPage{}, nil
}

type stubSharer struct{}

func (stubSharer) Enabled() bool { return false }

func (stubSharer) PublicURL(id string) string { return "/track/" + id }

func (stubSharer) SharePage(context.Context, string, string) error {
	return services.ErrSharingDisabled
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{Port: "0", BaseURL: "https://track.example.com"}
	auth, err := services.NewAdminAuthService("correct horse battery", "0123456789abcdef0123456789abcdef", time.Hour, logger)
	if err != nil {
		t.Fatalf("NewAdminAuthService() error = %v", err)
	}
	sessions, err := session.NewMemoryStore()
	if err != nil {
		t.Fatalf("NewMemoryStore() error = %v", err)
	}
	h, err := handlers.New(handlers.Dependencies{
		Config:         cfg,
		Pages:          stubPages{},
		Sharer:         stubSharer{},
		AuthService:    auth,
		SessionManager: session.NewManager(sessions, false, time.Hour),
		Logger:         logger,
	})
	if err != nil {
		t.Fatalf("handlers.New() error = %v", err)
	}
	srv, err := New(cfg, logger, h)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv
}

func TestRouter(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		headers    map[string]string
		wantStatus int
	}{
		{name: "health", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{name: "stylesheet", method: http.MethodGet, path: "/assets/css/trackpage.css", wantStatus: http.StatusOK},
		{name: "public page json", method: http.MethodGet, path: "/api/pages/" + routePageID, wantStatus: http.StatusOK},
		{name: "public page html", method: http.MethodGet, path: "/track/" + routePageID, wantStatus: http.StatusOK},
		{name: "missing page html", method: http.MethodGet, path: "/track/4f1d8a8e-0000-4000-8000-000000000000", wantStatus: http.StatusNotFound},
		{name: "list requires admin", method: http.MethodGet, path: "/api/pages", wantStatus: http.StatusUnauthorized},
		{name: "generate requires admin", method: http.MethodPost, path: "/api/pages", body: `{}`, wantStatus: http.StatusUnauthorized},
		{name: "delete requires admin", method: http.MethodDelete, path: "/api/pages/" + routePageID, wantStatus: http.StatusUnauthorized},
		{name: "classify requires admin", method: http.MethodGet, path: "/api/carriers/classify?number=TBA123456789012", wantStatus: http.StatusUnauthorized},
		{name: "auth check requires admin", method: http.MethodGet, path: "/api/auth/check", wantStatus: http.StatusUnauthorized},
		{
			name:       "login blocked cross origin",
			method:     http.MethodPost,
			path:       "/api/auth/login",
			body:       `{"password":"correct horse battery"}`,
			headers:    map[string]string{"Origin": "https://attacker.example"},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "login same origin",
			method:     http.MethodPost,
			path:       "/api/auth/login",
			body:       `{"password":"correct horse battery"}`,
			headers:    map[string]string{"Origin": "https://track.example.com"},
			wantStatus: http.StatusOK,
		},
		{name: "unknown api route", method: http.MethodGet, path: "/api/nope/deeper", wantStatus: http.StatusNotFound},
		{name: "unknown page route", method: http.MethodGet, path: "/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, "https://track.example.com"+tt.path, body)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			srv.httpServer.Handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("%s %s: unexpected status: got=%d want=%d body=%s", tt.method, tt.path, rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestRouter_AdminFlowWithBearerToken(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	handler := srv.httpServer.Handler

	login := httptest.NewRequest(http.MethodPost, "https://track.example.com/api/auth/login", strings.NewReader(`{"password":"correct horse battery"}`))
	login.Header.Set("Origin", "https://track.example.com")
	loginRec := httptest.NewRecorder()
	handler.ServeHTTP(loginRec, login)
	if loginRec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", loginRec.Code, loginRec.Body.String())
	}
	var creds struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(loginRec.Body.Bytes(), &creds); err != nil || creds.Token == "" {
		t.Fatalf("expected token in login response: %v", err)
	}
	token := creds.Token

	req := httptest.NewRequest(http.MethodPost, "https://track.example.com/api/pages/"+routePageID+"/save", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
}
