package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/gitshopapp/trackpage/internal/services"
	"github.com/gitshopapp/trackpage/ui/views"
)

// TrackPage renders the public HTML status page.
func (h *Handlers) TrackPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pageIDFromRequest(r)
	if !ok {
		h.renderHTML(w, r, http.StatusNotFound, views.NotFoundPage())
		return
	}
	r = h.withPageLogger(r, id)
	ctx = r.Context()

	page, err := h.pages.Get(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrPageNotFound) {
			h.renderHTML(w, r, http.StatusNotFound, views.NotFoundPage())
			return
		}
		h.loggerFromContext(ctx).Error("failed to load status page", "error", err)
		h.renderHTML(w, r, http.StatusInternalServerError, views.ErrorPage())
		return
	}

	h.renderHTML(w, r, http.StatusOK, views.StatusPage(page, h.config.Location()))
}

// NotFound answers unmatched routes, in JSON under /api/.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "Not found"})
		return
	}
	h.renderHTML(w, r, http.StatusNotFound, views.NotFoundPage())
}

func (h *Handlers) renderHTML(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := component.Render(r.Context(), w); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to render page", "error", err)
	}
}
