package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func login(t *testing.T, h *Handlers, password string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":"`+password+`"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	return rec
}

func TestLogin_IssuesTokenAndSessionCookie(t *testing.T) {
	t.Parallel()

	h := newTestHandlers(t, &fakePages{}, nil)
	rec := login(t, h, testPassword)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
	body := decodeBody[loginResponse](t, rec)
	if body.Token == "" || body.ExpiresAt.IsZero() {
		t.Fatalf("expected token and expiry, got %+v", body)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "trackpage_session" || !cookies[0].HttpOnly {
		t.Fatalf("expected an http-only session cookie, got %+v", cookies)
	}
}

func TestLogin_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{name: "wrong password", body: `{"password":"nope"}`, wantStatus: http.StatusUnauthorized, wantError: "Unauthorized"},
		{name: "missing password", body: `{}`, wantStatus: http.StatusBadRequest, wantError: "password is required"},
		{name: "empty body", body: ``, wantStatus: http.StatusBadRequest, wantError: "Request body is required"},
		{name: "unknown field", body: `{"password":"x","admin":true}`, wantStatus: http.StatusBadRequest, wantError: "Request body must be valid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestHandlers(t, &fakePages{}, nil)
			rec := httptest.NewRecorder()
			h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, tt.wantStatus)
			}
			if got := decodeBody[errorResponse](t, rec).Error; got != tt.wantError {
				t.Fatalf("unexpected error: got=%q want=%q", got, tt.wantError)
			}
			if len(rec.Result().Cookies()) != 0 {
				t.Fatalf("expected no session cookie on failure")
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	h := newTestHandlers(t, &fakePages{}, nil)
	loginRec := login(t, h, testPassword)
	token := decodeBody[loginResponse](t, loginRec).Token
	sessionCookie := loginRec.Result().Cookies()[0]

	protected := h.SessionMiddleware(h.RequireAdmin(http.HandlerFunc(h.AuthCheck)))

	tests := []struct {
		name       string
		prepare    func(*http.Request)
		wantStatus int
		wantMethod string
	}{
		{
			name:       "no credentials",
			prepare:    func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "bearer token",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+token)
			},
			wantStatus: http.StatusOK,
			wantMethod: "token",
		},
		{
			name: "tampered bearer token",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+token+"x")
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "session cookie",
			prepare: func(r *http.Request) {
				r.AddCookie(sessionCookie)
			},
			wantStatus: http.StatusOK,
			wantMethod: "session",
		},
		{
			name: "unknown session cookie",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: sessionCookie.Name, Value: "missing"})
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			body := decodeBody[authCheckResponse](t, rec)
			if !body.Authenticated || body.Subject != "admin" || body.Method != tt.wantMethod {
				t.Fatalf("unexpected auth check: %+v", body)
			}
		})
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	t.Parallel()

	h := newTestHandlers(t, &fakePages{}, nil)
	sessionCookie := login(t, h, testPassword).Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(sessionCookie)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusNoContent)
	}

	check := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	check.AddCookie(sessionCookie)
	checkRec := httptest.NewRecorder()
	h.SessionMiddleware(h.RequireAdmin(http.HandlerFunc(h.AuthCheck))).ServeHTTP(checkRec, check)
	if checkRec.Code != http.StatusUnauthorized {
		t.Fatalf("expected destroyed session to be rejected, got %d", checkRec.Code)
	}
}
