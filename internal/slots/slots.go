// Package slots holds the time-slot helpers behind the booking calendar.
// Every function takes now explicitly; dates are YYYY-MM-DD and times HH:MM,
// read in now's location.
package slots

import (
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// DefaultDays is the number of days after today offered by the calendar.
const DefaultDays = 30

// DefaultSlots are the consultation start times offered each day.
var DefaultSlots = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
	"17:00", "17:30",
}

// Slot is one entry of a day's calendar.
type Slot struct {
	Time     string `json:"time"`
	Disabled bool   `json:"disabled"`
	IsPast   bool   `json:"isPast"`
}

// IsToday reports whether dateISO names now's calendar date. Unparseable dates are not today.
func IsToday(dateISO string, now time.Time) bool {
	d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(dateISO), now.Location())
	if err != nil {
		return false
	}
	y1, m1, d1 := d.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// IsTimeSlotAvailable reports whether slot can still be booked on dateISO.
// Any slot on a day other than today is open; on today the slot must start
// strictly after now's minute of day. A malformed slot on today is unavailable.
func IsTimeSlotAvailable(slot, dateISO string, now time.Time) bool {
	if !IsToday(dateISO, now) {
		return true
	}
	minutes, ok := MinutesOfDay(slot)
	if !ok {
		return false
	}
	return minutes > now.Hour()*60+now.Minute()
}

// MinutesOfDay parses "HH:MM" into minutes since midnight.
func MinutesOfDay(slot string) (int, bool) {
	hh, mm, found := strings.Cut(strings.TrimSpace(slot), ":")
	if !found {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// AvailableDates lists today followed by the next days calendar dates.
func AvailableDates(now time.Time, days int) []string {
	if days < 0 {
		days = 0
	}
	out := make([]string, 0, days+1)
	y, m, d := now.Date()
	for i := 0; i <= days; i++ {
		out = append(out, time.Date(y, m, d+i, 0, 0, 0, 0, now.Location()).Format(dateLayout))
	}
	return out
}

// InWindow reports whether dateISO falls between today and today+days inclusive.
func InWindow(dateISO string, now time.Time, days int) bool {
	d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(dateISO), now.Location())
	if err != nil {
		return false
	}
	y, m, day := now.Date()
	first := time.Date(y, m, day, 0, 0, 0, 0, now.Location())
	last := time.Date(y, m, day+days, 0, 0, 0, 0, now.Location())
	return !d.Before(first) && !d.After(last)
}

// Day marks each of times as disabled or past for dateISO.
func Day(dateISO string, now time.Time, times []string) []Slot {
	today := IsToday(dateISO, now)
	out := make([]Slot, 0, len(times))
	for _, t := range times {
		available := IsTimeSlotAvailable(t, dateISO, now)
		out = append(out, Slot{
			Time:     t,
			Disabled: !available,
			IsPast:   !available && today,
		})
	}
	return out
}

// Open returns only the times still bookable on dateISO.
func Open(dateISO string, now time.Time, times []string) []string {
	var out []string
	for _, t := range times {
		if IsTimeSlotAvailable(t, dateISO, now) {
			out = append(out, t)
		}
	}
	return out
}
