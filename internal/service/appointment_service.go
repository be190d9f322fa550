package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulseai-health/clinic-api/internal/domain/appointment"
)

// AppointmentService covers the post-booking lifecycle: listing and status
// transitions driven by doctor, pharmacy, and admin actions.
type AppointmentService struct {
	repo     appointment.Repository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewAppointmentService(repo appointment.Repository, auditSvc *AuditService, log *zap.Logger) *AppointmentService {
	return &AppointmentService{repo: repo, auditSvc: auditSvc, log: log}
}

type TransitionCommand struct {
	Status       appointment.Status
	CurrentStage *string
	Urgent       *bool
}

func (s *AppointmentService) GetAppointment(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerRole == "patient" && a.PatientID != callerID {
		return nil, ErrForbidden
	}
	return a, nil
}

// TransitionStatus applies a lifecycle transition. Patients may only cancel
// their own appointments; staff roles may apply any legal transition and
// adjust stage/urgency along the way.
func (s *AppointmentService) TransitionStatus(ctx context.Context, id uuid.UUID, cmd *TransitionCommand, callerID uuid.UUID, callerRole string, ip string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if callerRole == "patient" {
		if a.PatientID != callerID {
			return nil, ErrForbidden
		}
		if cmd.Status != appointment.StatusCancelled {
			return nil, ErrForbidden
		}
	}

	if err := a.Transition(cmd.Status); err != nil {
		return nil, err
	}
	if cmd.CurrentStage != nil {
		a.CurrentStage = *cmd.CurrentStage
	}
	if cmd.Urgent != nil {
		a.Urgent = *cmd.Urgent
	}

	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, fmt.Errorf("persisting status transition: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID.String(),
		UserRole:     callerRole,
		Action:       "update",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"status":%q}`, cmd.Status),
	})

	s.log.Info("appointment status changed",
		zap.String("appointment_id", id.String()),
		zap.String("status", string(cmd.Status)),
	)
	return a, nil
}

func (s *AppointmentService) ListAppointments(ctx context.Context, q *appointment.ListAppointmentsQuery, callerID uuid.UUID, callerRole string, callerDoctorID *uuid.UUID) (*appointment.PagedAppointments, error) {
	// Patients see only their own appointments; doctors only their own slate.
	switch callerRole {
	case "patient":
		q.PatientID = &callerID
	case "doctor":
		if callerDoctorID != nil {
			q.DoctorID = callerDoctorID
		}
	}
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}
