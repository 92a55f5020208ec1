package types

import (
	"errors"
	"strings"
	"time"
)

var (
	// minTimestamp is the exclusive lower bound for schedule timestamps.
	minTimestamp = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

	timestampLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.000",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}

	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// ParseTimestamp accepts RFC 3339 and the common date-only and local
// date-time forms. Values without a zone are read as UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrInvalidTimestamp
	}
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if !ts.After(minTimestamp) {
			return time.Time{}, ErrInvalidTimestamp
		}
		return ts.UTC(), nil
	}
	return time.Time{}, ErrInvalidTimestamp
}
