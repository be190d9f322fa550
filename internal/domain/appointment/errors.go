package appointment

import "errors"

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrSlotTaken               = errors.New("appointment slot is already booked")
	ErrInvalidSlot             = errors.New("time is not one of the bookable slots")
	ErrInvalidDate             = errors.New("date must be in YYYY-MM-DD format")
	ErrDateInPast              = errors.New("cannot book an appointment on a past date")
	ErrInvalidStatus           = errors.New("invalid appointment status")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")
)
