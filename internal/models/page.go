package models

import "time"

const (
	StatusOrderConfirmed     = "Order Confirmed"
	StatusOrderProcessed     = "Order Processed"
	StatusLabelCreated       = "Label Created"
	StatusPackagePickedUp    = "Package Picked Up"
	StatusDepartedOrigin     = "Departed Origin Facility"
	StatusInTransit          = "In Transit"
	StatusArrivedSorting     = "Arrived at Sorting Facility"
	StatusDepartedSorting    = "Departed Sorting Facility"
	StatusArrivedDestination = "Arrived at Destination Facility"
	StatusOutForDelivery     = "Out for Delivery"
	StatusDelivered          = "Delivered"
)

// TrackingEvent is one row of a status page timeline. At is the underlying
// timestamp and is not part of the public payload.
type TrackingEvent struct {
	Status      string    `json:"status"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Location    string    `json:"location"`
	Completed   bool      `json:"completed"`
	Current     bool      `json:"current"`
	IsDelivered bool      `json:"isDelivered"`
	At          time.Time `json:"-"`
}

type StatusPage struct {
	ID                      string          `json:"id"`
	CustomerName            string          `json:"customerName"`
	OrderID                 string          `json:"orderId"`
	OrderNumber             string          `json:"orderNumber"`
	TrackingNumber          string          `json:"trackingNumber"`
	Carrier                 string          `json:"carrier"`
	CarrierCode             string          `json:"carrierCode"`
	TrackingURL             string          `json:"trackingUrl"`
	Destination             string          `json:"destination"`
	ShippingAddress         ShippingAddress `json:"shippingAddress"`
	FulfillmentStatus       string          `json:"fulfillmentStatus"`
	IsDelivered             bool            `json:"isDelivered"`
	DeliveredAt             *time.Time      `json:"deliveredAt,omitempty"`
	Events                  []TrackingEvent `json:"events"`
	CustomPickupDate        *time.Time      `json:"customPickupDate,omitempty"`
	IsReplacementTracking   bool            `json:"isReplacementTracking"`
	ReplacementTrackingDate *time.Time      `json:"replacementTrackingDate,omitempty"`
	CreatedAt               time.Time       `json:"createdAt"`
	UpdatedAt               time.Time       `json:"updatedAt"`
	Saved                   bool            `json:"saved"`
}

// CurrentEvent returns the in-flight event, if any.
func (p *StatusPage) CurrentEvent() *TrackingEvent {
	if p == nil {
		return nil
	}
	for i := range p.Events {
		if p.Events[i].Current {
			return &p.Events[i]
		}
	}
	return nil
}

// LatestEvent returns the last event in the timeline.
func (p *StatusPage) LatestEvent() *TrackingEvent {
	if p == nil || len(p.Events) == 0 {
		return nil
	}
	return &p.Events[len(p.Events)-1]
}
