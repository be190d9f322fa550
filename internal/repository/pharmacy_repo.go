package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pulseai-health/clinic-api/internal/domain/pharmacy"
)

type MedicationRepository struct {
	db *gorm.DB
}

var _ pharmacy.Repository = (*MedicationRepository)(nil)

func NewMedicationRepository(db *gorm.DB) *MedicationRepository {
	return &MedicationRepository{db: db}
}

func (r *MedicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*pharmacy.Medication, error) {
	var m pharmacy.Medication
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pharmacy.ErrMedicationNotFound
		}
		return nil, fmt.Errorf("fetching medication: %w", err)
	}
	return &m, nil
}

func (r *MedicationRepository) List(ctx context.Context) ([]*pharmacy.Medication, error) {
	var meds []*pharmacy.Medication
	if err := r.db.WithContext(ctx).Order("name").Find(&meds).Error; err != nil {
		return nil, fmt.Errorf("listing medications: %w", err)
	}
	return meds, nil
}

func (r *MedicationRepository) SearchByName(ctx context.Context, prefix string, limit int) ([]*pharmacy.Medication, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	var meds []*pharmacy.Medication
	err := r.db.WithContext(ctx).
		Where("name ILIKE ?", prefix+"%").
		Order("name").
		Limit(limit).
		Find(&meds).Error
	if err != nil {
		return nil, fmt.Errorf("searching medications: %w", err)
	}
	return meds, nil
}

// AdjustStock applies the delta with a guarded single-statement update so
// concurrent dispenses cannot drive stock negative.
func (r *MedicationRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*pharmacy.Medication, error) {
	result := r.db.WithContext(ctx).Model(&pharmacy.Medication{}).
		Where("id = ? AND stock_quantity + ? >= 0", id, delta).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if result.Error != nil {
		return nil, fmt.Errorf("adjusting stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Either the row is missing or the decrement would underflow.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, pharmacy.ErrInsufficientStock
	}
	return r.GetByID(ctx, id)
}
