package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gitshopapp/trackpage/internal/logging"
	"github.com/gitshopapp/trackpage/internal/models"
	"github.com/gitshopapp/trackpage/internal/services"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type generateRequest struct {
	OrderNumber    string `json:"orderNumber" validate:"max=64"`
	TrackingNumber string `json:"trackingNumber" validate:"max=64"`
	PickupDate     string `json:"pickupDate" validate:"max=64"`
}

type shareRequest struct {
	Recipient string `json:"recipient" validate:"required,max=320"`
}

type pageResponse struct {
	*models.StatusPage
	PublicURL string `json:"publicUrl"`
}

type pageListResponse struct {
	Pages []pageResponse `json:"pages"`
}

type shareResponse struct {
	Sent      bool   `json:"sent"`
	PublicURL string `json:"publicUrl"`
}

func (h *Handlers) pageResponse(page *models.StatusPage) pageResponse {
	return pageResponse{StatusPage: page, PublicURL: h.sharer.PublicURL(page.ID)}
}

// GeneratePage builds a new unsaved status page for an order and tracking number.
func (h *Handlers) GeneratePage(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	page, err := h.pages.Generate(r.Context(), services.GenerateInput{
		OrderNumber:    req.OrderNumber,
		TrackingNumber: req.TrackingNumber,
		PickupDate:     req.PickupDate,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, h.pageResponse(page))
}

func (h *Handlers) ListPages(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(parsed, maxListLimit)
	}

	pages, err := h.pages.ListSaved(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := pageListResponse{Pages: make([]pageResponse, 0, len(pages))}
	for _, page := range pages {
		resp.Pages = append(resp.Pages, h.pageResponse(page))
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handlers) SavePage(w http.ResponseWriter, r *http.Request) {
	id, ok := pageIDFromRequest(r)
	if !ok {
		h.writeServiceError(w, r, services.ErrPageNotFound)
		return
	}
	r = h.withPageLogger(r, id)

	page, err := h.pages.Save(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, h.pageResponse(page))
}

func (h *Handlers) RefreshPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pageIDFromRequest(r)
	if !ok {
		h.writeServiceError(w, r, services.ErrPageNotFound)
		return
	}
	r = h.withPageLogger(r, id)

	page, err := h.pages.Refresh(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, h.pageResponse(page))
}

// SharePage emails the public link of a page.
func (h *Handlers) SharePage(w http.ResponseWriter, r *http.Request) {
	id, ok := pageIDFromRequest(r)
	if !ok {
		h.writeServiceError(w, r, services.ErrPageNotFound)
		return
	}
	r = h.withPageLogger(r, id)

	var req shareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if err := h.sharer.SharePage(r.Context(), id, req.Recipient); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, shareResponse{Sent: true, PublicURL: h.sharer.PublicURL(id)})
}

func (h *Handlers) DeletePage(w http.ResponseWriter, r *http.Request) {
	id, ok := pageIDFromRequest(r)
	if !ok {
		h.writeServiceError(w, r, services.ErrPageNotFound)
		return
	}
	r = h.withPageLogger(r, id)

	if err := h.pages.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPage is the public JSON view of a page.
func (h *Handlers) GetPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pageIDFromRequest(r)
	if !ok {
		h.writeServiceError(w, r, services.ErrPageNotFound)
		return
	}
	r = h.withPageLogger(r, id)

	page, err := h.pages.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, h.pageResponse(page))
}

// pageIDFromRequest reads the {id} route variable. Page ids are UUIDs, so
// anything else cannot exist.
func pageIDFromRequest(r *http.Request) (string, bool) {
	raw := strings.TrimSpace(mux.Vars(r)["id"])
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

func (h *Handlers) withPageLogger(r *http.Request, id string) *http.Request {
	return r.WithContext(logging.WithPage(r.Context(), h.logger, id))
}
