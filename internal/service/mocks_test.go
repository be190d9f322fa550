package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulseai-health/clinic-api/internal/domain"
	"github.com/pulseai-health/clinic-api/internal/domain/appointment"
	"github.com/pulseai-health/clinic-api/internal/domain/doctor"
	"github.com/pulseai-health/clinic-api/internal/domain/notification"
	"github.com/pulseai-health/clinic-api/pkg/metrics"
)

// Prometheus collectors register globally, so the whole package shares one.
var testMetrics = metrics.NewCollector("test")

var errMockNotWired = errors.New("mock method not wired")

type mockAppointmentRepo struct {
	CreateFn      func(ctx context.Context, a *appointment.Appointment) error
	GetByIDFn     func(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	ListFn        func(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error)
	UpdateFn      func(ctx context.Context, a *appointment.Appointment) error
	BookedTimesFn func(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error)
	CountVisitsFn func(ctx context.Context, patientID, doctorID uuid.UUID) (int64, error)
	UpcomingFn    func(ctx context.Context, fromDate string) ([]*appointment.Appointment, error)
}

func (m *mockAppointmentRepo) Create(ctx context.Context, a *appointment.Appointment) error {
	if m.CreateFn == nil {
		return errMockNotWired
	}
	return m.CreateFn(ctx, a)
}

func (m *mockAppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	if m.GetByIDFn == nil {
		return nil, errMockNotWired
	}
	return m.GetByIDFn(ctx, id)
}

func (m *mockAppointmentRepo) List(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	if m.ListFn == nil {
		return nil, errMockNotWired
	}
	return m.ListFn(ctx, q)
}

func (m *mockAppointmentRepo) UpdateStatus(ctx context.Context, a *appointment.Appointment) error {
	if m.UpdateFn == nil {
		return errMockNotWired
	}
	return m.UpdateFn(ctx, a)
}

func (m *mockAppointmentRepo) BookedTimes(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error) {
	if m.BookedTimesFn == nil {
		return nil, nil
	}
	return m.BookedTimesFn(ctx, doctorID, date)
}

func (m *mockAppointmentRepo) CountVisits(ctx context.Context, patientID, doctorID uuid.UUID) (int64, error) {
	if m.CountVisitsFn == nil {
		return 0, nil
	}
	return m.CountVisitsFn(ctx, patientID, doctorID)
}

func (m *mockAppointmentRepo) ListUpcoming(ctx context.Context, fromDate string) ([]*appointment.Appointment, error) {
	if m.UpcomingFn == nil {
		return nil, errMockNotWired
	}
	return m.UpcomingFn(ctx, fromDate)
}

type mockDoctorRepo struct {
	CreateFn          func(ctx context.Context, d *doctor.Doctor) error
	GetByIDFn         func(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error)
	ListAvailableFn   func(ctx context.Context) ([]*doctor.Doctor, error)
	SetAvailabilityFn func(ctx context.Context, id uuid.UUID, available bool) error
}

func (m *mockDoctorRepo) Create(ctx context.Context, d *doctor.Doctor) error {
	if m.CreateFn == nil {
		return errMockNotWired
	}
	return m.CreateFn(ctx, d)
}

func (m *mockDoctorRepo) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	if m.GetByIDFn == nil {
		return nil, errMockNotWired
	}
	return m.GetByIDFn(ctx, id)
}

func (m *mockDoctorRepo) ListAvailable(ctx context.Context) ([]*doctor.Doctor, error) {
	if m.ListAvailableFn == nil {
		return nil, errMockNotWired
	}
	return m.ListAvailableFn(ctx)
}

func (m *mockDoctorRepo) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	if m.SetAvailabilityFn == nil {
		return errMockNotWired
	}
	return m.SetAvailabilityFn(ctx, id, available)
}

type mockNotificationRepo struct {
	CreateFn     func(ctx context.Context, n *notification.Notification) error
	HasSentFn    func(ctx context.Context, appointmentID uuid.UUID, kind notification.Kind) (bool, error)
	ListByUserFn func(ctx context.Context, userID uuid.UUID, limit int) ([]*notification.Notification, error)
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	if m.CreateFn == nil {
		return nil
	}
	return m.CreateFn(ctx, n)
}

func (m *mockNotificationRepo) HasSent(ctx context.Context, appointmentID uuid.UUID, kind notification.Kind) (bool, error) {
	if m.HasSentFn == nil {
		return false, nil
	}
	return m.HasSentFn(ctx, appointmentID, kind)
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*notification.Notification, error) {
	if m.ListByUserFn == nil {
		return nil, errMockNotWired
	}
	return m.ListByUserFn(ctx, userID, limit)
}

type mockUserDirectory struct {
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

func (m *mockUserDirectory) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn == nil {
		return nil, errMockNotWired
	}
	return m.GetByIDFn(ctx, id)
}

type mockMessenger struct {
	SendFn func(ctx context.Context, toNumber, body string) (string, error)
	calls  []string
}

func (m *mockMessenger) Send(ctx context.Context, toNumber, body string) (string, error) {
	m.calls = append(m.calls, body)
	if m.SendFn == nil {
		return "SM-test", nil
	}
	return m.SendFn(ctx, toNumber, body)
}

type mockAuditRepo struct {
	CreateFn func(ctx context.Context, entry *domain.AuditLog) error
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if m.CreateFn == nil {
		return nil
	}
	return m.CreateFn(ctx, entry)
}

func newTestAuditService() *AuditService {
	return NewAuditService(&mockAuditRepo{}, testMetrics, zap.NewNop())
}
