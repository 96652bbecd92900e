package models

import (
	"strings"
	"time"
)

// Order is the read-only view of a commerce backend order.
type Order struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	CreatedAt         time.Time       `json:"createdAt"`
	FulfillmentStatus string          `json:"fulfillmentStatus"`
	FinancialStatus   string          `json:"financialStatus"`
	IsDelivered       bool            `json:"isDelivered"`
	DeliveredAt       *time.Time      `json:"deliveredAt,omitempty"`
	ShippingAddress   ShippingAddress `json:"shippingAddress"`
	CustomerName      string          `json:"customerName"`
	Fulfillments      []Fulfillment   `json:"fulfillments"`
}

type ShippingAddress struct {
	Address1     string `json:"address1,omitempty"`
	City         string `json:"city"`
	ProvinceCode string `json:"provinceCode"`
	Zip          string `json:"zip"`
	CountryCode  string `json:"countryCode,omitempty"`
}

// Destination renders the "City, ST" label used on status pages.
func (a ShippingAddress) Destination() string {
	city := strings.TrimSpace(a.City)
	province := strings.ToUpper(strings.TrimSpace(a.ProvinceCode))
	switch {
	case city != "" && province != "":
		return city + ", " + province
	case city != "":
		return city
	default:
		return province
	}
}

type Fulfillment struct {
	Status          string     `json:"status"`
	ShipmentStatus  string     `json:"shipmentStatus"`
	TrackingNumbers []string   `json:"trackingNumbers"`
	CreatedAt       time.Time  `json:"createdAt"`
	DeliveredAt     *time.Time `json:"deliveredAt,omitempty"`
}

// PrimaryTrackingNumber returns the first non-empty tracking number.
func (f Fulfillment) PrimaryTrackingNumber() string {
	for _, number := range f.TrackingNumbers {
		if trimmed := strings.TrimSpace(number); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// ReplacementTracking is the optional order metafield holding a reshipment's
// tracking number.
type ReplacementTracking struct {
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}
