package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:30", want: 570},
		{in: "23:59", want: 1439},
		{in: "24:00", wantErr: true},
		{in: "10:60", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestFormatTimeOfDayRoundTrips(t *testing.T) {
	for _, minutes := range []int{0, 570, 615, 1439} {
		parsed, err := ParseTimeOfDay(FormatTimeOfDay(minutes))
		require.NoError(t, err)
		assert.Equal(t, minutes, parsed)
	}
}

func TestCombineDateTime(t *testing.T) {
	day := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)
	got := CombineDateTime(day, 615)
	assert.Equal(t, time.Date(2024, 7, 10, 10, 15, 0, 0, time.UTC), got)
}

func TestBookingItemOverlaps(t *testing.T) {
	base := &BookingItem{StartMinutes: 600, DurationMinutes: 45}

	assert.True(t, base.Overlaps(&BookingItem{StartMinutes: 630, DurationMinutes: 30}))
	assert.True(t, base.Overlaps(&BookingItem{StartMinutes: 570, DurationMinutes: 45}))
	// Back to back is not an overlap.
	assert.False(t, base.Overlaps(&BookingItem{StartMinutes: 645, DurationMinutes: 30}))
	assert.False(t, base.Overlaps(&BookingItem{StartMinutes: 555, DurationMinutes: 45}))
}
