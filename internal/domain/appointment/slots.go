package appointment

import (
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// clinicSlots is the fixed daily slot grid: hourly within clinic hours with
// the 13:00 lunch gap. Values are stored-form, HH:MM:SS.
var clinicSlots = []string{
	"09:00:00", "10:00:00", "11:00:00", "12:00:00",
	"14:00:00", "15:00:00", "16:00:00", "17:00:00",
}

// Slots returns a copy of the daily slot enumeration.
func Slots() []string {
	out := make([]string, len(clinicSlots))
	copy(out, clinicSlots)
	return out
}

// NormalizeSlot canonicalizes a candidate time ("09:00" or "09:00:00") to
// stored form, returning ErrInvalidSlot if it is not on the grid.
func NormalizeSlot(t string) (string, error) {
	if len(t) == 5 {
		t += ":00"
	}
	for _, s := range clinicSlots {
		if s == t {
			return s, nil
		}
	}
	return "", ErrInvalidSlot
}

// ParseDate validates a YYYY-MM-DD string in the clinic's location.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// IsPastDate reports whether date falls strictly before now's calendar date
// in the clinic's location. Same-day bookings are allowed.
func IsPastDate(date time.Time, now time.Time, loc *time.Location) bool {
	y, m, d := now.In(loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return date.Before(today)
}
