package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	cases := map[string]time.Time{
		"2024-01-01T00:00:00Z":      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"2024-01-01T02:00:00+02:00": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"2024-03-05T10:30":          time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC),
		"2024-03-05":                time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		"2024-03-05T10:30:00.250Z":  time.Date(2024, 3, 5, 10, 30, 0, 250_000_000, time.UTC),
	}
	for raw, want := range cases {
		got, err := ParseTimestamp(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), "%s: want %v got %v", raw, want, got)
	}

	for _, raw := range []string{"", "yesterday", "1900-01-01", "1850-06-01T00:00:00Z", "2024-13-01"} {
		_, err := ParseTimestamp(raw)
		assert.ErrorIs(t, err, ErrInvalidTimestamp, raw)
	}
}
