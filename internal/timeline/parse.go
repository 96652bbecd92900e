package timeline

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidTimestamp = errors.New("invalid timestamp")

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 date or datetime. Values without a zone
// are interpreted as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	return ParseTimestampIn(value, time.UTC)
}

// ParseTimestampIn is ParseTimestamp with zone-less values interpreted in loc.
func ParseTimestampIn(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTimestamp)
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, trimmed)
}

// ParseOptionalTimestamp returns nil for an empty value.
func ParseOptionalTimestamp(value string, loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parsed, err := ParseTimestampIn(value, loc)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
