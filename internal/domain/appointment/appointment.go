package appointment

import (
	"time"

	"github.com/google/uuid"
)

// State transitions possibilities:
//
//	pending → confirmed → completed
//	pending | confirmed → cancelled
//	pending | confirmed → rescheduled (old row keeps history, new row is the new booking)
type Status string

const (
	StatusPending     Status = "pending"
	StatusConfirmed   Status = "confirmed"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusRescheduled Status = "rescheduled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusRescheduled:
		return true
	}
	return false
}

// ActiveStatuses are the statuses that occupy a slot. The partial unique
// index on (doctor_id, appointment_date, appointment_time) is scoped to
// exactly this set.
func ActiveStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed}
}

func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index"`

	// Date and time are stored wall-clock in the clinic's timezone.
	// AppointmentTime is always one of the enumerated slots, HH:MM:SS.
	AppointmentDate string `gorm:"column:appointment_date;type:date;not null;index"`
	AppointmentTime string `gorm:"column:appointment_time;type:time;not null"`

	Status       Status `gorm:"column:status;type:varchar(30);not null;default:'confirmed';index"`
	Urgent       bool   `gorm:"column:urgent;default:false"`
	Notes        string `gorm:"column:notes;type:text"`
	CurrentStage string `gorm:"column:current_stage;type:varchar(50)"`

	// VisitCount is this patient's nth visit to this doctor, assigned at
	// booking time.
	VisitCount int `gorm:"column:visit_count;not null;default:1"`
}

func (Appointment) TableName() string {
	return "clinic.appointments"
}

// StartsAt resolves the stored date and slot time into an instant in the
// clinic's location.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, a.AppointmentDate+" "+a.AppointmentTime, loc)
}

func (a *Appointment) CanTransitionTo(newStatus Status) bool {
	allowed := map[Status][]Status{
		StatusPending:     {StatusConfirmed, StatusCompleted, StatusCancelled, StatusRescheduled},
		StatusConfirmed:   {StatusCompleted, StatusCancelled, StatusRescheduled},
		StatusCompleted:   {},
		StatusCancelled:   {},
		StatusRescheduled: {},
	}

	for _, s := range allowed[a.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

// Transition moves the appointment to newStatus, enforcing the state table.
// Rows are never deleted: cancellation and rescheduling are status
// transitions that preserve audit history.
func (a *Appointment) Transition(newStatus Status) error {
	if !newStatus.IsValid() {
		return ErrInvalidStatus
	}
	if !a.CanTransitionTo(newStatus) {
		return ErrInvalidStatusTransition
	}
	a.Status = newStatus
	return nil
}

type BookAppointmentCommand struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Date      string // YYYY-MM-DD
	Time      string // HH:MM or HH:MM:SS, must be an enumerated slot
	Notes     string
	Urgent    bool
}

type ListAppointmentsQuery struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Status    *Status
	DateFrom  string
	DateTo    string
	Page      int
	PageSize  int
}

type PagedAppointments struct {
	Appointments []*Appointment
	TotalCount   int64
	Page         int
	PageSize     int
	TotalPages   int
}

// Slot is one entry of the availability listing for a doctor and date.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}
