package service

import (
	"context"
	"fmt"

	"github.com/pulseai-health/clinic-api/internal/repository"
)

// StatsService backs the admin dashboard with storewide aggregates.
type StatsService struct {
	stats *repository.StatsRepository
	users interface {
		CountActivePatients(ctx context.Context) (int64, error)
	}
}

func NewStatsService(stats *repository.StatsRepository, users *repository.UserRepository) *StatsService {
	return &StatsService{stats: stats, users: users}
}

type DashboardStats struct {
	TotalAppointments    int64                   `json:"total_appointments"`
	AppointmentsByStatus map[string]int64        `json:"appointments_by_status"`
	TotalPrescriptions   int64                   `json:"total_prescriptions"`
	ActivePatients       int64                   `json:"active_patients"`
	DoctorLoads          []repository.DoctorLoad `json:"appointments_per_doctor"`
}

func (s *StatsService) Overview(ctx context.Context) (*DashboardStats, error) {
	appts, err := s.stats.CountAppointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointment totals: %w", err)
	}
	byStatus, err := s.stats.CountAppointmentsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointment status breakdown: %w", err)
	}
	rx, err := s.stats.CountPrescriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("prescription totals: %w", err)
	}
	patients, err := s.users.CountActivePatients(ctx)
	if err != nil {
		return nil, fmt.Errorf("patient totals: %w", err)
	}
	loads, err := s.stats.AppointmentsPerDoctor(ctx, 20)
	if err != nil {
		return nil, fmt.Errorf("doctor load breakdown: %w", err)
	}

	return &DashboardStats{
		TotalAppointments:    appts,
		AppointmentsByStatus: byStatus,
		TotalPrescriptions:   rx,
		ActivePatients:       patients,
		DoctorLoads:          loads,
	}, nil
}
