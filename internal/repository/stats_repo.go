package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pulseai-health/clinic-api/internal/domain/appointment"
	"github.com/pulseai-health/clinic-api/internal/domain/prescription"
)

// StatsRepository serves the admin dashboard aggregates with direct
// aggregate queries instead of loading rows.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

type DoctorLoad struct {
	DoctorID     string `gorm:"column:doctor_id"`
	DoctorName   string `gorm:"column:doctor_name"`
	Appointments int64  `gorm:"column:appointments"`
}

func (r *StatsRepository) CountAppointments(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting appointments: %w", err)
	}
	return count, nil
}

func (r *StatsRepository) CountAppointmentsByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("counting appointments by status: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

func (r *StatsRepository) CountPrescriptions(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&prescription.Prescription{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting prescriptions: %w", err)
	}
	return count, nil
}

func (r *StatsRepository) AppointmentsPerDoctor(ctx context.Context, limit int) ([]DoctorLoad, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []DoctorLoad
	err := r.db.WithContext(ctx).
		Table("clinic.appointments a").
		Select("a.doctor_id, d.name AS doctor_name, COUNT(*) AS appointments").
		Joins("JOIN clinic.doctors d ON d.id = a.doctor_id").
		Group("a.doctor_id, d.name").
		Order("appointments DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregating appointments per doctor: %w", err)
	}
	return rows, nil
}
