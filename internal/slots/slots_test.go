package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noon = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

func TestIsToday(t *testing.T) {
	tests := []struct {
		name string
		date string
		want bool
	}{
		{"same day", "2026-10-14", true},
		{"tomorrow", "2026-10-15", false},
		{"yesterday", "2026-10-13", false},
		{"same day last year", "2025-10-14", false},
		{"garbage", "Oct 14", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsToday(tt.date, noon))
		})
	}
}

func TestIsTodayUsesNowLocation(t *testing.T) {
	zone := time.FixedZone("IST", 5*3600+1800)
	lateEvening := time.Date(2026, time.October, 14, 23, 45, 0, 0, zone)
	assert.True(t, IsToday("2026-10-14", lateEvening))
	assert.False(t, IsToday("2026-10-14", lateEvening.Add(time.Hour)))
}

func TestFutureDateAlwaysAvailable(t *testing.T) {
	lateNight := time.Date(2026, time.October, 14, 23, 59, 0, 0, time.UTC)
	for _, slot := range []string{"09:00", "00:00", "garbage"} {
		assert.True(t, IsTimeSlotAvailable(slot, "2026-10-15", lateNight), slot)
	}
	assert.True(t, IsTimeSlotAvailable("09:00", "not-a-date", lateNight))
}

func TestTodaySlotsMustBeStrictlyLater(t *testing.T) {
	now := time.Date(2026, time.October, 14, 10, 30, 45, 0, time.UTC)
	tests := []struct {
		slot string
		want bool
	}{
		{"10:00", false},
		{"10:30", false},
		{"10:31", true},
		{"17:30", true},
		{"09:59", false},
		{"25:00", false},
		{"ten", false},
	}
	for _, tt := range tests {
		t.Run(tt.slot, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTimeSlotAvailable(tt.slot, "2026-10-14", now))
		})
	}
}

func TestMinutesOfDay(t *testing.T) {
	m, ok := MinutesOfDay("14:30")
	require.True(t, ok)
	assert.Equal(t, 870, m)

	_, ok = MinutesOfDay("1430")
	assert.False(t, ok)
	_, ok = MinutesOfDay("12:60")
	assert.False(t, ok)
}

func TestAvailableDates(t *testing.T) {
	dates := AvailableDates(noon, DefaultDays)
	require.Len(t, dates, 31)
	assert.Equal(t, "2026-10-14", dates[0])
	assert.Equal(t, "2026-10-15", dates[1])
	assert.Equal(t, "2026-11-13", dates[30])

	assert.Equal(t, []string{"2026-10-14"}, AvailableDates(noon, -3))
}

func TestInWindow(t *testing.T) {
	assert.True(t, InWindow("2026-10-14", noon, 30))
	assert.True(t, InWindow("2026-11-13", noon, 30))
	assert.False(t, InWindow("2026-11-14", noon, 30))
	assert.False(t, InWindow("2026-10-13", noon, 30))
	assert.False(t, InWindow("bad", noon, 30))
}

func TestDayMarksPastSlots(t *testing.T) {
	day := Day("2026-10-14", noon, DefaultSlots)
	require.Len(t, day, len(DefaultSlots))
	for _, s := range day {
		m, _ := MinutesOfDay(s.Time)
		past := m <= 12*60
		assert.Equal(t, past, s.Disabled, s.Time)
		assert.Equal(t, past, s.IsPast, s.Time)
	}

	for _, s := range Day("2026-10-20", noon, DefaultSlots) {
		assert.False(t, s.Disabled)
		assert.False(t, s.IsPast)
	}
}

func TestOpen(t *testing.T) {
	open := Open("2026-10-14", noon, DefaultSlots)
	assert.Equal(t, []string{"14:00", "14:30", "15:00", "15:30", "16:00", "16:30", "17:00", "17:30"}, open)
	assert.Len(t, Open("2026-10-15", noon, DefaultSlots), len(DefaultSlots))
}
