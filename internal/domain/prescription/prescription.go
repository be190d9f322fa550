package prescription

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPartial   Status = "partial"
	StatusFulfilled Status = "fulfilled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPartial, StatusFulfilled:
		return true
	}
	return false
}

type Prescription struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	AppointmentID uuid.UUID `gorm:"column:appointment_id;type:uuid;not null;index"`
	PatientID     uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID      uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index"`

	Status Status `gorm:"column:status;type:varchar(20);not null;default:'pending';index"`

	Items []Item `gorm:"foreignKey:PrescriptionID"`

	// FulfilledBy/At are set by pharmacy staff when dispensing.
	FulfilledBy *uuid.UUID `gorm:"column:fulfilled_by;type:uuid"`
	FulfilledAt *time.Time `gorm:"column:fulfilled_at"`
}

func (Prescription) TableName() string {
	return "clinic.prescriptions"
}

// Item is a single prescribed medication line.
type Item struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	PrescriptionID uuid.UUID `gorm:"column:prescription_id;type:uuid;not null;index"`
	MedicationID   uuid.UUID `gorm:"column:medication_id;type:uuid;not null;index"`

	Dosage       string `gorm:"column:dosage;type:varchar(50);not null"` // e.g. "500mg"
	Days         int    `gorm:"column:days;not null"`
	Quantity     int    `gorm:"column:quantity;not null"`
	Instructions string `gorm:"column:instructions;type:text"`
}

func (Item) TableName() string {
	return "clinic.prescription_items"
}

// Fulfill marks the prescription dispensed. partial indicates the pharmacy
// could only cover some items (insufficient stock); the remainder stays open
// for a later visit.
func (p *Prescription) Fulfill(pharmacistID uuid.UUID, partial bool) error {
	if p.Status == StatusFulfilled {
		return ErrAlreadyFulfilled
	}
	now := time.Now()
	p.FulfilledBy = &pharmacistID
	p.FulfilledAt = &now
	if partial {
		p.Status = StatusPartial
	} else {
		p.Status = StatusFulfilled
	}
	return nil
}

type IssuePrescriptionCommand struct {
	AppointmentID uuid.UUID
	DoctorID      uuid.UUID
	Items         []IssueItem
}

type IssueItem struct {
	MedicationID uuid.UUID
	Dosage       string
	Days         int
	Quantity     int
	Instructions string
}

type ListPrescriptionsQuery struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Status    *Status
	Page      int
	PageSize  int
}

type PagedPrescriptions struct {
	Prescriptions []*Prescription
	TotalCount    int64
	Page          int
	PageSize      int
	TotalPages    int
}
