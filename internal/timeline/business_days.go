package timeline

import "time"

// IsBusinessDay reports whether t falls on Monday through Friday.
func IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// AddBusinessDays advances t by n business days, skipping weekends. The time
// of day is preserved.
func AddBusinessDays(t time.Time, n int) time.Time {
	if n < 0 {
		return SubtractBusinessDays(t, -n)
	}
	return stepBusinessDays(t, n, 1)
}

// SubtractBusinessDays moves t back by n business days, skipping weekends.
func SubtractBusinessDays(t time.Time, n int) time.Time {
	if n < 0 {
		return AddBusinessDays(t, -n)
	}
	return stepBusinessDays(t, n, -1)
}

func stepBusinessDays(t time.Time, n, direction int) time.Time {
	result := t
	for remaining := n; remaining > 0; {
		result = result.AddDate(0, 0, direction)
		if IsBusinessDay(result) {
			remaining--
		}
	}
	return result
}
