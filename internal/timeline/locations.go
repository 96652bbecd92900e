package timeline

import (
	"time"

	"github.com/gitshopapp/trackpage/internal/models"
)

const (
	locationOnline      = "Online"
	locationFulfillment = "Fulfillment Center"
	locationOrigin      = "Origin Facility"
)

type hourWindow struct {
	from int
	to   int
}

var (
	businessHours = hourWindow{from: 9, to: 17}
	earlyMorning  = hourWindow{from: 6, to: 10}
	deliveryPrep  = hourWindow{from: 8, to: 11}
	deliveryHours = hourWindow{from: 10, to: 18}
	anyHour       = hourWindow{from: 0, to: 23}
)

var statusHourWindow = map[string]hourWindow{
	models.StatusOrderProcessed:     businessHours,
	models.StatusArrivedSorting:     businessHours,
	models.StatusArrivedDestination: businessHours,
	models.StatusLabelCreated:       earlyMorning,
	models.StatusPackagePickedUp:    earlyMorning,
	models.StatusOutForDelivery:     deliveryPrep,
	models.StatusDelivered:          deliveryHours,
}

func (s *Synthesizer) locationFor(status string, in Input) string {
	destination := models.ShippingAddress{City: in.DestinationCity, ProvinceCode: in.ProvinceCode}.Destination()

	switch status {
	case models.StatusOrderConfirmed:
		return locationOnline
	case models.StatusOrderProcessed, models.StatusLabelCreated:
		return locationFulfillment
	case models.StatusPackagePickedUp, models.StatusDepartedOrigin:
		return locationOrigin
	case models.StatusInTransit:
		return s.pick(s.facilities.hubs())
	case models.StatusArrivedSorting, models.StatusDepartedSorting, models.StatusArrivedDestination:
		return s.pick(s.facilities.ForState(in.ProvinceCode))
	case models.StatusOutForDelivery, models.StatusDelivered:
		if destination != "" {
			return destination
		}
		return s.pick(s.facilities.ForState(in.ProvinceCode))
	default:
		return ""
	}
}

func (s *Synthesizer) displayTime(status string) string {
	window, ok := statusHourWindow[status]
	if !ok {
		window = anyHour
	}
	hour := s.between(window.from, window.to)
	minute := s.between(0, 59)
	return time.Date(2000, time.January, 1, hour, minute, 0, 0, time.UTC).Format(timeLayout)
}
