package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSlot(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"09:00", "09:00:00", true},
		{"09:00:00", "09:00:00", true},
		{"14:00", "14:00:00", true},
		{"17:00:00", "17:00:00", true},
		{"13:00", "", false},
		{"09:30", "", false},
		{"18:00", "", false},
		{"9:00", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, err := NormalizeSlot(tc.in)
		if tc.ok {
			assert.NoError(t, err, "slot %q", tc.in)
			assert.Equal(t, tc.want, got)
		} else {
			assert.ErrorIs(t, err, ErrInvalidSlot, "slot %q", tc.in)
		}
	}
}

func TestSlotsIsACopy(t *testing.T) {
	s := Slots()
	assert.Len(t, s, 8)
	s[0] = "mutated"
	assert.Equal(t, "09:00:00", Slots()[0])
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-09-15", time.UTC)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("15-09-2026", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ParseDate("2026-9-15", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestIsPastDate(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 9, 15, 23, 30, 0, 0, loc)

	yesterday := time.Date(2026, 9, 14, 0, 0, 0, 0, loc)
	today := time.Date(2026, 9, 15, 0, 0, 0, 0, loc)
	tomorrow := time.Date(2026, 9, 16, 0, 0, 0, 0, loc)

	assert.True(t, IsPastDate(yesterday, now, loc))
	assert.False(t, IsPastDate(today, now, loc), "same-day bookings stay valid")
	assert.False(t, IsPastDate(tomorrow, now, loc))
}

func TestStartsAt(t *testing.T) {
	a := &Appointment{AppointmentDate: "2026-09-15", AppointmentTime: "14:00:00"}

	got, err := a.StartsAt(time.UTC)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 15, 14, 0, 0, 0, time.UTC), got)
}

func TestTransition(t *testing.T) {
	a := &Appointment{Status: StatusPending}
	assert.NoError(t, a.Transition(StatusConfirmed))
	assert.NoError(t, a.Transition(StatusCompleted))

	assert.ErrorIs(t, a.Transition(StatusCancelled), ErrInvalidStatusTransition)
	assert.Equal(t, StatusCompleted, a.Status)

	b := &Appointment{Status: StatusConfirmed}
	assert.NoError(t, b.Transition(StatusCancelled))
	assert.ErrorIs(t, b.Transition(StatusConfirmed), ErrInvalidStatusTransition)

	c := &Appointment{Status: StatusConfirmed}
	assert.ErrorIs(t, c.Transition(Status("archived")), ErrInvalidStatus)
}

func TestStatusIsActive(t *testing.T) {
	assert.True(t, StatusPending.IsActive())
	assert.True(t, StatusConfirmed.IsActive())
	assert.False(t, StatusCompleted.IsActive())
	assert.False(t, StatusCancelled.IsActive())
	assert.False(t, StatusRescheduled.IsActive())
}
