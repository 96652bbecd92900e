package services

import "errors"

// ValidationError carries a message that is safe to show to the operator.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrTrackingMismatch    = errors.New("tracking number does not belong to this order")
	ErrInvalidPickupDate   = errors.New("invalid pickup date")
	ErrPageNotFound        = errors.New("status page not found")
	ErrUpstreamUnavailable = errors.New("order backend unavailable")
	ErrSharingDisabled     = errors.New("sharing is not configured")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid token")
)
