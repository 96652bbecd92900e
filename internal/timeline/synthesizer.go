// Package timeline synthesizes plausible shipment timelines from sparse
// order data.
package timeline

import (
	"time"

	"github.com/gitshopapp/trackpage/internal/models"
)

const (
	DefaultFulfillmentAnchorWindow = 30 * 24 * time.Hour

	dateLayout = "Jan 2, 2006"
	timeLayout = "3:04 PM"
)

// Input carries the anchor data a timeline is built from. All timestamps must
// already be parsed; see ParseTimestamp.
type Input struct {
	OrderCreatedAt  time.Time
	DestinationCity string
	ProvinceCode    string
	IsDelivered     bool
	DeliveredAt     *time.Time
	Fulfillments    []models.Fulfillment
	PickupDate      *time.Time
}

type Options struct {
	Random     Random
	Now        func() time.Time
	Facilities *Facilities
	Location   *time.Location

	// FulfillmentAnchorWindow bounds how long after order creation a
	// fulfillment may be created and still re-anchor the label date.
	FulfillmentAnchorWindow time.Duration
}

type Synthesizer struct {
	random       Random
	now          func() time.Time
	facilities   *Facilities
	location     *time.Location
	anchorWindow time.Duration
}

func NewSynthesizer(opts Options) *Synthesizer {
	s := &Synthesizer{
		random:       opts.Random,
		now:          opts.Now,
		facilities:   opts.Facilities,
		location:     opts.Location,
		anchorWindow: opts.FulfillmentAnchorWindow,
	}
	if s.random == nil {
		s.random = globalRandom{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.facilities == nil {
		s.facilities = DefaultFacilities()
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.anchorWindow <= 0 {
		s.anchorWindow = DefaultFulfillmentAnchorWindow
	}
	return s
}

type plannedEvent struct {
	status string
	at     time.Time
}

// Synthesize builds the ordered event list for a shipment. Events dated after
// the current moment are withheld, except the Delivered event which always
// uses the authoritative delivery timestamp.
func (s *Synthesizer) Synthesize(in Input) []models.TrackingEvent {
	now := s.now().In(s.location)
	confirmed := in.OrderCreatedAt.In(s.location)

	label, pickup := s.labelAndPickup(confirmed, in)
	processed := AddBusinessDays(confirmed, s.between(1, 2))
	if processed.After(label) {
		processed = label
	}

	planned := []plannedEvent{
		{status: models.StatusOrderConfirmed, at: confirmed},
		{status: models.StatusOrderProcessed, at: processed},
		{status: models.StatusLabelCreated, at: label},
		{status: models.StatusPackagePickedUp, at: pickup},
		{status: models.StatusDepartedOrigin, at: AddBusinessDays(pickup, 1)},
	}
	previous := planned[len(planned)-1].at
	for _, status := range []string{
		models.StatusInTransit,
		models.StatusArrivedSorting,
		models.StatusDepartedSorting,
		models.StatusArrivedDestination,
		models.StatusOutForDelivery,
	} {
		previous = AddBusinessDays(previous, s.between(3, 5))
		planned = append(planned, plannedEvent{status: status, at: previous})
	}

	delivered := in.IsDelivered && in.DeliveredAt != nil
	// Events stay in date order, so a delivered shipment ends at delivery.
	cutoff := now
	var deliveredAt time.Time
	if delivered {
		deliveredAt = in.DeliveredAt.In(s.location)
		if deliveredAt.Before(cutoff) {
			cutoff = deliveredAt
		}
	}

	events := make([]models.TrackingEvent, 0, len(planned)+1)
	for i, p := range planned {
		// Order Confirmed is the anchor and is always shown.
		if i > 0 && p.at.After(cutoff) {
			break
		}
		events = append(events, s.event(p.status, p.at, in))
	}

	if delivered {
		final := s.event(models.StatusDelivered, deliveredAt, in)
		final.IsDelivered = true
		return append(events, final)
	}

	if !in.IsDelivered && len(events) > 0 {
		last := &events[len(events)-1]
		last.Completed = false
		last.Current = true
	}
	return events
}

func (s *Synthesizer) labelAndPickup(confirmed time.Time, in Input) (time.Time, time.Time) {
	if in.PickupDate != nil {
		label := clampAfterOrder(in.PickupDate.In(s.location), confirmed)
		return label, AddBusinessDays(label, s.between(1, 2))
	}

	label := AddBusinessDays(confirmed, s.between(1, 3))
	pickup := AddBusinessDays(label, s.between(1, 2))

	fulfilledAt, ok := s.anchorFulfillment(confirmed, in.Fulfillments)
	if !ok {
		return label, pickup
	}

	pickup = SubtractBusinessDays(fulfilledAt.In(s.location), 1)
	label = clampAfterOrder(SubtractBusinessDays(pickup, s.between(1, 2)), confirmed)
	if pickup.Before(label) {
		pickup = label
	}
	return label, pickup
}

// anchorFulfillment finds the first tracked fulfillment created within the
// anchor window after the order.
func (s *Synthesizer) anchorFulfillment(confirmed time.Time, fulfillments []models.Fulfillment) (time.Time, bool) {
	for _, f := range fulfillments {
		if f.PrimaryTrackingNumber() == "" || f.CreatedAt.IsZero() {
			continue
		}
		gap := f.CreatedAt.Sub(confirmed)
		if gap > 0 && gap < s.anchorWindow {
			return f.CreatedAt, true
		}
	}
	return time.Time{}, false
}

// clampAfterOrder moves a label date that falls on or before the order's
// calendar day to one business day after the order.
func clampAfterOrder(candidate, confirmed time.Time) time.Time {
	if calendarDay(candidate).After(calendarDay(confirmed)) {
		return candidate
	}
	return AddBusinessDays(confirmed, 1)
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Synthesizer) event(status string, at time.Time, in Input) models.TrackingEvent {
	return models.TrackingEvent{
		Status:    status,
		Date:      at.Format(dateLayout),
		Time:      s.displayTime(status),
		Location:  s.locationFor(status, in),
		Completed: true,
		At:        at,
	}
}

// between returns a uniform integer in [lo, hi].
func (s *Synthesizer) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.random.IntN(hi-lo+1)
}

func (s *Synthesizer) pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[s.random.IntN(len(options))]
}
