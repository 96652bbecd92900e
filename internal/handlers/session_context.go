package handlers

import (
	"net/http"
	"strings"

	"github.com/gitshopapp/trackpage/internal/session"
)

// adminSession returns the admin session attached by SessionMiddleware, or
// loads it from the cookie when the middleware did not run. Sessions without
// a subject are treated as anonymous.
func (h *Handlers) adminSession(r *http.Request) *session.Data {
	sess := session.GetSessionFromContext(r.Context())
	if sess == nil && h.sessionManager != nil {
		loaded, err := h.sessionManager.GetSession(r.Context(), r)
		if err != nil {
			return nil
		}
		sess = loaded
	}
	if sess == nil || strings.TrimSpace(sess.Subject) == "" {
		return nil
	}
	return sess
}
