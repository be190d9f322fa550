package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create inserts the appointment. The storage layer enforces slot
	// uniqueness with a partial unique index over
	// (doctor_id, appointment_date, appointment_time) scoped to active
	// statuses; a duplicate-key violation is returned as ErrSlotTaken. This
	// insert is the authoritative conflict check; any prior availability
	// read is advisory only.
	Create(ctx context.Context, a *Appointment) error

	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, q *ListAppointmentsQuery) (*PagedAppointments, error)

	// UpdateStatus persists a status transition (plus stage/urgency edits).
	UpdateStatus(ctx context.Context, a *Appointment) error

	// BookedTimes returns the occupied slot times for a doctor on a date,
	// considering only active (pending/confirmed) appointments.
	BookedTimes(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error)

	// CountVisits returns how many appointments this patient has ever had
	// with this doctor, regardless of status.
	CountVisits(ctx context.Context, patientID, doctorID uuid.UUID) (int64, error)

	// ListUpcoming returns active appointments on or after fromDate, the
	// reminder sweep's candidate set.
	ListUpcoming(ctx context.Context, fromDate string) ([]*Appointment, error)
}
