package doctor

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Doctor is the clinic's doctor directory entry. The booking core treats it
// as read-only; admins manage the roster.
type Doctor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	// Set when the doctor also has a login account.
	UserID *uuid.UUID `gorm:"column:user_id;type:uuid;index"`

	Name           string `gorm:"column:name;type:varchar(255);not null"`
	Specialization string `gorm:"column:specialization;type:varchar(255);not null"`
	Available      bool   `gorm:"column:available;default:true;index"`
	Phone          string `gorm:"column:phone;type:varchar(20)"`
}

func (Doctor) TableName() string {
	return "clinic.doctors"
}

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	ListAvailable(ctx context.Context) ([]*Doctor, error)
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
}
