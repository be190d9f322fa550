package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulseai-health/clinic-api/internal/domain"
	"github.com/pulseai-health/clinic-api/internal/domain/appointment"
	"github.com/pulseai-health/clinic-api/internal/domain/doctor"
	"github.com/pulseai-health/clinic-api/internal/domain/notification"
	"github.com/pulseai-health/clinic-api/pkg/metrics"
)

// UserDirectory is the slice of the user store the clinical services need:
// resolving a patient's name and WhatsApp number.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// BookingService books appointment slots. Availability reads are advisory;
// the only authoritative conflict check is the duplicate-key response of the
// insert itself, so two clients racing on the same displayed-available slot
// resolve to exactly one booking and one ErrSlotTaken.
type BookingService struct {
	repo       appointment.Repository
	doctorRepo doctor.Repository
	users      UserDirectory
	notifRepo  notification.Repository
	messenger  Messenger
	auditSvc   *AuditService
	metrics    *metrics.Collector
	log        *zap.Logger
	loc        *time.Location
	clinicName string
}

func NewBookingService(
	repo appointment.Repository,
	doctorRepo doctor.Repository,
	users UserDirectory,
	notifRepo notification.Repository,
	messenger Messenger,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
	loc *time.Location,
	clinicName string,
) *BookingService {
	return &BookingService{
		repo:       repo,
		doctorRepo: doctorRepo,
		users:      users,
		notifRepo:  notifRepo,
		messenger:  messenger,
		auditSvc:   auditSvc,
		metrics:    m,
		log:        log,
		loc:        loc,
		clinicName: clinicName,
	}
}

// ListAvailableSlots returns the full slot grid for a doctor and date, each
// entry marked unavailable if an active appointment occupies it. Read-only.
func (s *BookingService) ListAvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]appointment.Slot, error) {
	if _, err := appointment.ParseDate(date, s.loc); err != nil {
		return nil, err
	}
	if _, err := s.doctorRepo.GetByID(ctx, doctorID); err != nil {
		return nil, err
	}

	booked, err := s.repo.BookedTimes(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("fetching booked times: %w", err)
	}

	taken := make(map[string]bool, len(booked))
	for _, t := range booked {
		taken[t] = true
	}

	grid := appointment.Slots()
	slots := make([]appointment.Slot, 0, len(grid))
	for _, t := range grid {
		slots = append(slots, appointment.Slot{Time: t, Available: !taken[t]})
	}
	return slots, nil
}

func (s *BookingService) BookAppointment(ctx context.Context, cmd *appointment.BookAppointmentCommand, callerRole string, ip string) (*appointment.Appointment, error) {
	// -------- Input Validation -----------
	slotTime, err := appointment.NormalizeSlot(cmd.Time)
	if err != nil {
		s.metrics.BookingsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	date, err := appointment.ParseDate(cmd.Date, s.loc)
	if err != nil {
		s.metrics.BookingsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if appointment.IsPastDate(date, time.Now(), s.loc) {
		s.metrics.BookingsTotal.WithLabelValues("rejected").Inc()
		return nil, appointment.ErrDateInPast
	}

	doc, err := s.doctorRepo.GetByID(ctx, cmd.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doc.Available {
		return nil, doctor.ErrDoctorUnavailable
	}

	visits, err := s.repo.CountVisits(ctx, cmd.PatientID, cmd.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("counting prior visits: %w", err)
	}

	a := &appointment.Appointment{
		PatientID:       cmd.PatientID,
		DoctorID:        cmd.DoctorID,
		AppointmentDate: cmd.Date,
		AppointmentTime: slotTime,
		Status:          appointment.StatusConfirmed,
		Urgent:          cmd.Urgent,
		Notes:           cmd.Notes,
		CurrentStage:    "booked",
		VisitCount:      int(visits) + 1,
	}

	// Atomic check-and-insert: the partial unique index decides the race.
	if err := s.repo.Create(ctx, a); err != nil {
		if err == appointment.ErrSlotTaken {
			s.metrics.SlotConflictsTotal.Inc()
			s.metrics.BookingsTotal.WithLabelValues("slot_taken").Inc()
			s.log.Info("slot conflict",
				zap.String("doctor_id", cmd.DoctorID.String()),
				zap.String("date", cmd.Date),
				zap.String("time", slotTime),
			)
			return nil, err
		}
		s.metrics.BookingsTotal.WithLabelValues("error").Inc()
		s.log.Error("failed to create appointment", zap.Error(err))
		return nil, err
	}

	s.metrics.BookingsTotal.WithLabelValues("booked").Inc()

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       cmd.PatientID.String(),
		UserRole:     callerRole,
		Action:       "create",
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
		IPAddress:    ip,
	})

	// Fire-and-forget confirmation: delivery failure never unwinds the
	// booking, so this runs detached from the request context.
	go s.sendConfirmation(a, doc)

	return a, nil
}

func (s *BookingService) sendConfirmation(a *appointment.Appointment, doc *doctor.Doctor) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	patient, err := s.users.GetByID(ctx, a.PatientID)
	if err != nil {
		s.log.Warn("confirmation skipped: patient lookup failed",
			zap.String("appointment_id", a.ID.String()), zap.Error(err))
		return
	}
	if patient.Mobile == "" {
		s.log.Warn("confirmation skipped: patient has no mobile number",
			zap.String("appointment_id", a.ID.String()))
		return
	}

	msg := notification.ReminderMessage(notification.KindConfirmation, doc.Name, s.clinicName, a.AppointmentDate, a.AppointmentTime)

	n := &notification.Notification{
		AppointmentID: a.ID,
		UserID:        a.PatientID,
		Kind:          notification.KindConfirmation,
		Message:       msg,
	}

	sid, err := s.messenger.Send(ctx, patient.Mobile, msg)
	if err != nil {
		n.Status = notification.StatusFailed
		s.log.Warn("booking confirmation delivery failed",
			zap.String("appointment_id", a.ID.String()), zap.Error(err))
	} else {
		n.Status = notification.StatusSent
		n.ProviderMessageID = sid
	}

	if err := s.notifRepo.Create(ctx, n); err != nil && err != notification.ErrAlreadySent {
		s.log.Error("failed to record confirmation notification", zap.Error(err))
	}
}
