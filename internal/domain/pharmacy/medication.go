package pharmacy

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMedicationNotFound = errors.New("medication not found")
	ErrInsufficientStock  = errors.New("insufficient medication stock")
)

// Medication is a pharmacy inventory row.
type Medication struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name          string `gorm:"column:name;type:varchar(255);not null;uniqueIndex"`
	StockQuantity int    `gorm:"column:stock_quantity;not null;default:0"`
}

func (Medication) TableName() string {
	return "clinic.medications"
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	List(ctx context.Context) ([]*Medication, error)
	SearchByName(ctx context.Context, prefix string, limit int) ([]*Medication, error)

	// AdjustStock applies a signed delta atomically; a decrement below zero
	// fails with ErrInsufficientStock and leaves the row unchanged.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*Medication, error)
}
