package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gitshopapp/trackpage/internal/logging"
	"github.com/gitshopapp/trackpage/internal/services"
)

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.FromContext(r.Context(), nil).Error("failed to encode response", "error", err)
	}
}

// writeServiceError maps service errors to status codes. Internal failures are
// logged and replaced with a generic message.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: validationErr.Message})
	case errors.Is(err, services.ErrTrackingMismatch), errors.Is(err, services.ErrInvalidPickupDate):
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrOrderNotFound):
		writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "Order not found"})
	case errors.Is(err, services.ErrPageNotFound):
		writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "Status page not found"})
	case errors.Is(err, services.ErrSharingDisabled):
		writeJSON(w, r, http.StatusServiceUnavailable, errorResponse{Error: "Sharing is not configured"})
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
	case errors.Is(err, services.ErrUpstreamUnavailable):
		h.loggerFromContext(r.Context()).Error("upstream request failed", "error", err)
		writeJSON(w, r, http.StatusBadGateway, errorResponse{Error: "Order service is unavailable, try again later"})
	default:
		h.loggerFromContext(r.Context()).Error("request failed", "error", err)
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}

// decodeJSON reads a size-limited JSON body into dst and validates its struct tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return services.ValidationError{Message: "Request body is required"}
		}
		return services.ValidationError{Message: "Request body must be valid JSON"}
	}
	if err := requestValidator.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return services.ValidationError{Message: validationMessage(fieldErrs[0])}
		}
		return services.ValidationError{Message: "Invalid request"}
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
