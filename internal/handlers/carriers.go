package handlers

import (
	"net/http"
	"strings"

	"github.com/gitshopapp/trackpage/internal/carrier"
)

type classifyResponse struct {
	TrackingNumber string `json:"trackingNumber"`
	carrier.Result
	Recognized bool           `json:"recognized"`
	Supported  []carrier.Info `json:"supported"`
}

// ClassifyCarrier reports which carrier issued a tracking number.
func (h *Handlers) ClassifyCarrier(w http.ResponseWriter, r *http.Request) {
	number := strings.TrimSpace(r.URL.Query().Get("number"))
	if number == "" {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "number is required"})
		return
	}
	if len(number) > 64 {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "number must be at most 64 characters"})
		return
	}

	result := carrier.Classify(number)
	writeJSON(w, r, http.StatusOK, classifyResponse{
		TrackingNumber: carrier.Normalize(number),
		Result:         result,
		Recognized:     result.CarrierCode != carrier.CodeUnknown,
		Supported:      carrier.Carriers(),
	})
}
