package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies which message an appointment notification carries. The
// three reminder kinds each fire at most once per appointment.
type Kind string

const (
	KindThreeDays    Kind = "3days"
	KindOneDay       Kind = "1day"
	KindOneHour      Kind = "1hour"
	KindConfirmation Kind = "booking_confirmation"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindThreeDays, KindOneDay, KindOneHour, KindConfirmation:
		return true
	}
	return false
}

type DeliveryStatus string

const (
	StatusSent   DeliveryStatus = "sent"
	StatusFailed DeliveryStatus = "failed"
)

// Notification is the delivery audit row and, for reminders, the
// deduplication record: a partial unique index on (appointment_id, kind)
// scoped to sent rows makes duplicate sends impossible even under
// overlapping sweep runs. Failed rows do not block a later retry.
type Notification struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SentAt time.Time `gorm:"column:sent_at;autoCreateTime;index"`

	AppointmentID uuid.UUID `gorm:"column:appointment_id;type:uuid;not null;index"`
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`

	Kind    Kind           `gorm:"column:kind;type:varchar(30);not null"`
	Message string         `gorm:"column:message;type:text;not null"`
	Status  DeliveryStatus `gorm:"column:status;type:varchar(20);not null;index"`

	// ProviderMessageID is the gateway's message SID when delivery succeeded.
	ProviderMessageID string `gorm:"column:provider_message_id;type:varchar(64)"`
}

func (Notification) TableName() string {
	return "clinic.notifications"
}

// ReminderMessage formats the outbound reminder body for a kind. Date and
// slotTime are the stored wall-clock strings; the 1-hour message asks the
// patient to confirm or reschedule by reply.
func ReminderMessage(kind Kind, doctorName, clinicName, date, slotTime string) string {
	switch kind {
	case KindThreeDays:
		return fmt.Sprintf("Reminder: You have an appointment in 3 days on %s at %s with Dr. %s at %s.", date, slotTime, doctorName, clinicName)
	case KindOneDay:
		return fmt.Sprintf("Reminder: You have an appointment tomorrow %s at %s with Dr. %s at %s.", date, slotTime, doctorName, clinicName)
	case KindOneHour:
		return fmt.Sprintf("Reminder: Your appointment starts in 1 hour at %s with Dr. %s at %s. Reply CONFIRM to confirm or RESCHEDULE to request a new time.", slotTime, doctorName, clinicName)
	case KindConfirmation:
		return fmt.Sprintf("Your appointment on %s at %s with Dr. %s at %s is confirmed.", date, slotTime, doctorName, clinicName)
	}
	return ""
}
