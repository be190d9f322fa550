package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulseai-health/clinic-api/internal/domain/appointment"
	"github.com/pulseai-health/clinic-api/internal/domain/pharmacy"
	"github.com/pulseai-health/clinic-api/internal/domain/prescription"
	"github.com/pulseai-health/clinic-api/pkg/metrics"
)

type PrescriptionService struct {
	repo     prescription.Repository
	apptRepo appointment.Repository
	medRepo  pharmacy.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewPrescriptionService(
	repo prescription.Repository,
	apptRepo appointment.Repository,
	medRepo pharmacy.Repository,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *PrescriptionService {
	return &PrescriptionService{
		repo:     repo,
		apptRepo: apptRepo,
		medRepo:  medRepo,
		auditSvc: auditSvc,
		metrics:  m,
		log:      log,
	}
}

// Issue creates a prescription against an appointment. The patient is
// derived from the appointment rather than trusted from the request.
func (s *PrescriptionService) Issue(ctx context.Context, cmd *prescription.IssuePrescriptionCommand, callerID uuid.UUID, callerRole string, ip string) (*prescription.Prescription, error) {
	if err := validateIssueCommand(cmd); err != nil {
		return nil, err
	}

	a, err := s.apptRepo.GetByID(ctx, cmd.AppointmentID)
	if err != nil {
		return nil, err
	}

	items := make([]prescription.Item, 0, len(cmd.Items))
	for _, it := range cmd.Items {
		if _, err := s.medRepo.GetByID(ctx, it.MedicationID); err != nil {
			return nil, fmt.Errorf("medication %s: %w", it.MedicationID, err)
		}
		items = append(items, prescription.Item{
			MedicationID: it.MedicationID,
			Dosage:       strings.TrimSpace(it.Dosage),
			Days:         it.Days,
			Quantity:     it.Quantity,
			Instructions: it.Instructions,
		})
	}

	p := &prescription.Prescription{
		AppointmentID: cmd.AppointmentID,
		PatientID:     a.PatientID,
		DoctorID:      cmd.DoctorID,
		Status:        prescription.StatusPending,
		Items:         items,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Error("failed to create prescription", zap.Error(err))
		return nil, fmt.Errorf("creating prescription: %w", err)
	}

	s.metrics.PrescriptionsIssued.Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       callerID.String(),
		UserRole:     callerRole,
		Action:       "create",
		ResourceType: "prescription",
		ResourceID:   p.ID.String(),
		IPAddress:    ip,
	})

	return p, nil
}

// Fulfill dispenses a prescription, decrementing inventory per item. Items
// the pharmacy cannot cover leave the prescription partial rather than
// failing the whole dispense.
func (s *PrescriptionService) Fulfill(ctx context.Context, id uuid.UUID, pharmacistID uuid.UUID, ip string) (*prescription.Prescription, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	partial := false
	for _, item := range p.Items {
		if _, err := s.medRepo.AdjustStock(ctx, item.MedicationID, -item.Quantity); err != nil {
			if err == pharmacy.ErrInsufficientStock {
				partial = true
				s.log.Warn("insufficient stock for prescription item",
					zap.String("prescription_id", id.String()),
					zap.String("medication_id", item.MedicationID.String()),
				)
				continue
			}
			return nil, fmt.Errorf("adjusting stock: %w", err)
		}
	}

	if err := p.Fulfill(pharmacistID, partial); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFulfillment(ctx, p); err != nil {
		return nil, fmt.Errorf("persisting fulfillment: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       pharmacistID.String(),
		UserRole:     "pharmacy",
		Action:       "update",
		ResourceType: "prescription",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"status":%q}`, p.Status),
	})

	return p, nil
}

func (s *PrescriptionService) List(ctx context.Context, q *prescription.ListPrescriptionsQuery, callerID uuid.UUID, callerRole string, callerDoctorID *uuid.UUID) (*prescription.PagedPrescriptions, error) {
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

func validateIssueCommand(cmd *prescription.IssuePrescriptionCommand) error {
	if len(cmd.Items) == 0 {
		return prescription.ErrNoItems
	}
	var errs []string
	for i, it := range cmd.Items {
		if strings.TrimSpace(it.Dosage) == "" {
			errs = append(errs, fmt.Sprintf("items[%d].dosage is required", i))
		}
		if it.Days <= 0 {
			errs = append(errs, fmt.Sprintf("items[%d].days must be positive", i))
		}
		if it.Quantity <= 0 {
			errs = append(errs, fmt.Sprintf("items[%d].quantity must be positive", i))
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
