package services

import (
	"strings"

	"github.com/gitshopapp/trackpage/internal/carrier"
	"github.com/gitshopapp/trackpage/internal/models"
)

type TrackingMatch int

const (
	TrackingMatchNone TrackingMatch = iota
	TrackingMatchMain
	TrackingMatchReplacement
)

func (m TrackingMatch) String() string {
	switch m {
	case TrackingMatchMain:
		return "main"
	case TrackingMatchReplacement:
		return "replacement"
	default:
		return "none"
	}
}

// MatchTrackingNumber decides whether number is the order's main tracking
// number (any number on the first fulfillment that exposes one) or its
// replacement tracking number. Comparison ignores case and whitespace.
func MatchTrackingNumber(order *models.Order, replacement *models.ReplacementTracking, number string) (TrackingMatch, error) {
	wanted := carrier.Normalize(number)
	if wanted == "" || order == nil {
		return TrackingMatchNone, ErrTrackingMismatch
	}

	for _, fulfillment := range order.Fulfillments {
		if fulfillment.PrimaryTrackingNumber() == "" {
			continue
		}
		for _, candidate := range fulfillment.TrackingNumbers {
			if carrier.Normalize(candidate) == wanted {
				return TrackingMatchMain, nil
			}
		}
		break
	}

	if replacement != nil && carrier.Normalize(replacement.Value) == wanted {
		return TrackingMatchReplacement, nil
	}

	return TrackingMatchNone, ErrTrackingMismatch
}

func normalizeOrderNumber(number string) string {
	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(number), "#"))
	if trimmed == "" {
		return ""
	}
	return "#" + trimmed
}
