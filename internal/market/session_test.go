package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// et builds a wall-clock instant in New York on a regular March weekday.
func et(hour, min int) time.Time {
	return time.Date(2024, 3, 5, hour, min, 0, 0, newYork)
}

func TestAllowsEntry_RegularSession(t *testing.T) {
	testCases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before open", et(9, 29), false},
		{"at open", et(9, 30), true},
		{"midday", et(13, 0), true},
		{"at close", et(16, 0), true},
		{"after close", et(16, 1), false},
		{"pre-market", et(7, 0), false},
		{"overnight", et(2, 0), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AllowsEntry(tc.at, false))
		})
	}
}

func TestAllowsEntry_ExtendedHours(t *testing.T) {
	testCases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"pre-market open", et(4, 0), true},
		{"pre-market", et(7, 0), true},
		{"regular", et(13, 0), true},
		{"after-hours", et(18, 30), true},
		{"after-hours close", et(20, 0), true},
		{"past after-hours", et(20, 1), false},
		{"overnight", et(2, 0), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AllowsEntry(tc.at, true))
		})
	}
}

func TestAllowsEntry_ConvertsFromOtherZones(t *testing.T) {
	// 19:00 UTC on an EST day is 14:00 in New York.
	utc := time.Date(2024, 3, 5, 19, 0, 0, 0, time.UTC)
	assert.True(t, AllowsEntry(utc, false))
}
