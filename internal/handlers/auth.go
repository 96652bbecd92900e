package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gitshopapp/trackpage/internal/session"
)

type adminContextKey struct{}

type loginRequest struct {
	Password string `json:"password" validate:"required,max=256"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type authCheckResponse struct {
	Authenticated bool   `json:"authenticated"`
	Subject       string `json:"subject"`
	Method        string `json:"method"`
}

// Login exchanges the admin password for a session cookie and a bearer token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	token, err := h.authService.Login(ctx, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if _, err := h.sessionManager.CreateSession(ctx, w, &session.Data{
		Subject: "admin",
		TokenID: token.TokenID,
	}); err != nil {
		logger.Error("failed to create session", "error", err)
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "Failed to create session"})
		return
	}

	writeJSON(w, r, http.StatusOK, loginResponse{Token: token.Token, ExpiresAt: token.ExpiresAt})
}

// Logout destroys the session cookie. Bearer tokens expire on their own.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionManager.DestroySession(r.Context(), w, r); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to destroy session", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) AuthCheck(w http.ResponseWriter, r *http.Request) {
	identity, _ := r.Context().Value(adminContextKey{}).(adminIdentity)
	writeJSON(w, r, http.StatusOK, authCheckResponse{
		Authenticated: true,
		Subject:       identity.Subject,
		Method:        identity.Method,
	})
}

type adminIdentity struct {
	Subject string
	Method  string
}

// RequireAdmin accepts either a bearer token or an admin session cookie.
func (h *Handlers) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if raw, ok := bearerToken(r); ok {
			subject, err := h.authService.ValidateToken(raw)
			if err != nil {
				h.loggerFromContext(ctx).Warn("rejected bearer token", "error", err)
				writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
				return
			}
			next.ServeHTTP(w, r.WithContext(withAdmin(ctx, adminIdentity{Subject: subject, Method: "token"})))
			return
		}

		sess := h.adminSession(r)
		if sess == nil {
			writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(withAdmin(ctx, adminIdentity{Subject: sess.Subject, Method: "session"})))
	})
}

func withAdmin(ctx context.Context, identity adminIdentity) context.Context {
	return context.WithValue(ctx, adminContextKey{}, identity)
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
