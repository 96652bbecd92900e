package services

import (
	"fmt"
	"time"
)

const (
	maxPickupFuture = 1 // years
	maxPickupPast   = 2 // years
)

// validatePickupDate rejects pickup dates before the order's calendar day,
// more than a year ahead or more than two years back.
func validatePickupDate(pickup, orderCreatedAt, now time.Time, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	if dayOf(pickup, loc).Before(dayOf(orderCreatedAt, loc)) {
		return fmt.Errorf("%w: must not be before the order date", ErrInvalidPickupDate)
	}
	if pickup.After(now.AddDate(maxPickupFuture, 0, 0)) {
		return fmt.Errorf("%w: must be within one year from today", ErrInvalidPickupDate)
	}
	if pickup.Before(now.AddDate(-maxPickupPast, 0, 0)) {
		return fmt.Errorf("%w: must be within the last two years", ErrInvalidPickupDate)
	}
	return nil
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
