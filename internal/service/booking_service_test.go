package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/pulseai-health/clinic-api/internal/domain"
	"github.com/pulseai-health/clinic-api/internal/domain/appointment"
	"github.com/pulseai-health/clinic-api/internal/domain/doctor"
)

func newBookingFixture(apptRepo *mockAppointmentRepo, docRepo *mockDoctorRepo) *BookingService {
	return NewBookingService(
		apptRepo,
		docRepo,
		&mockUserDirectory{GetByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			return &domain.User{ID: id, Name: "Test Patient"}, nil
		}},
		&mockNotificationRepo{},
		&mockMessenger{},
		newTestAuditService(),
		testMetrics,
		zap.NewNop(),
		time.UTC,
		"Test Clinic",
	)
}

func availableDoctor(id uuid.UUID) *doctor.Doctor {
	return &doctor.Doctor{ID: id, Name: "Rivera", Specialization: "Cardiology", Available: true}
}

func TestBookAppointment_Success(t *testing.T) {
	docID := uuid.New()
	patientID := uuid.New()

	apptRepo := &mockAppointmentRepo{
		CreateFn: func(ctx context.Context, a *appointment.Appointment) error {
			a.ID = uuid.New()
			return nil
		},
		CountVisitsFn: func(ctx context.Context, pid, did uuid.UUID) (int64, error) {
			return 2, nil
		},
	}
	docRepo := &mockDoctorRepo{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
			return availableDoctor(id), nil
		},
	}
	svc := newBookingFixture(apptRepo, docRepo)

	date := time.Now().UTC().AddDate(0, 0, 7).Format(appointment.DateLayout)
	a, err := svc.BookAppointment(context.Background(), &appointment.BookAppointmentCommand{
		PatientID: patientID,
		DoctorID:  docID,
		Date:      date,
		Time:      "10:00",
	}, "patient", "127.0.0.1")

	assert.NoError(t, err)
	assert.Equal(t, appointment.StatusConfirmed, a.Status)
	assert.Equal(t, "10:00:00", a.AppointmentTime)
	assert.Equal(t, 3, a.VisitCount)
	assert.Equal(t, "booked", a.CurrentStage)
}

func TestBookAppointment_SlotTaken(t *testing.T) {
	apptRepo := &mockAppointmentRepo{
		CreateFn: func(ctx context.Context, a *appointment.Appointment) error {
			return appointment.ErrSlotTaken
		},
	}
	docRepo := &mockDoctorRepo{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
			return availableDoctor(id), nil
		},
	}
	svc := newBookingFixture(apptRepo, docRepo)

	date := time.Now().UTC().AddDate(0, 0, 2).Format(appointment.DateLayout)
	_, err := svc.BookAppointment(context.Background(), &appointment.BookAppointmentCommand{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Date:      date,
		Time:      "09:00",
	}, "patient", "127.0.0.1")

	assert.ErrorIs(t, err, appointment.ErrSlotTaken)
}

func TestBookAppointment_InvalidSlot(t *testing.T) {
	svc := newBookingFixture(&mockAppointmentRepo{}, &mockDoctorRepo{})

	date := time.Now().UTC().AddDate(0, 0, 2).Format(appointment.DateLayout)
	for _, slot := range []string{"13:00", "09:30", "8am", ""} {
		_, err := svc.BookAppointment(context.Background(), &appointment.BookAppointmentCommand{
			PatientID: uuid.New(),
			DoctorID:  uuid.New(),
			Date:      date,
			Time:      slot,
		}, "patient", "127.0.0.1")
		assert.ErrorIs(t, err, appointment.ErrInvalidSlot, "slot %q", slot)
	}
}

func TestBookAppointment_PastDate(t *testing.T) {
	svc := newBookingFixture(&mockAppointmentRepo{}, &mockDoctorRepo{})

	date := time.Now().UTC().AddDate(0, 0, -1).Format(appointment.DateLayout)
	_, err := svc.BookAppointment(context.Background(), &appointment.BookAppointmentCommand{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Date:      date,
		Time:      "10:00",
	}, "patient", "127.0.0.1")

	assert.ErrorIs(t, err, appointment.ErrDateInPast)
}

func TestBookAppointment_SameDayAllowed(t *testing.T) {
	apptRepo := &mockAppointmentRepo{
		CreateFn: func(ctx context.Context, a *appointment.Appointment) error {
			a.ID = uuid.New()
			return nil
		},
	}
	docRepo := &mockDoctorRepo{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
			return availableDoctor(id), nil
		},
	}
	svc := newBookingFixture(apptRepo, docRepo)

	date := time.Now().UTC().Format(appointment.DateLayout)
	_, err := svc.BookAppointment(context.Background(), &appointment.BookAppointmentCommand{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Date:      date,
		Time:      "17:00",
	}, "patient", "127.0.0.1")

	assert.NoError(t, err)
}

func TestBookAppointment_DoctorUnavailable(t *testing.T) {
	docRepo := &mockDoctorRepo{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
			return &doctor.Doctor{ID: id, Name: "Dr. Off", Available: false}, nil
		},
	}
	svc := newBookingFixture(&mockAppointmentRepo{}, docRepo)

	date := time.Now().UTC().AddDate(0, 0, 3).Format(appointment.DateLayout)
	_, err := svc.BookAppointment(context.Background(), &appointment.BookAppointmentCommand{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Date:      date,
		Time:      "11:00",
	}, "patient", "127.0.0.1")

	assert.ErrorIs(t, err, doctor.ErrDoctorUnavailable)
}

func TestListAvailableSlots(t *testing.T) {
	apptRepo := &mockAppointmentRepo{
		BookedTimesFn: func(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error) {
			return []string{"10:00:00", "15:00:00"}, nil
		},
	}
	docRepo := &mockDoctorRepo{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
			return availableDoctor(id), nil
		},
	}
	svc := newBookingFixture(apptRepo, docRepo)

	slots, err := svc.ListAvailableSlots(context.Background(), uuid.New(), "2026-09-15")
	assert.NoError(t, err)
	assert.Len(t, slots, 8)

	byTime := make(map[string]bool, len(slots))
	for _, s := range slots {
		byTime[s.Time] = s.Available
	}
	assert.False(t, byTime["10:00:00"])
	assert.False(t, byTime["15:00:00"])
	assert.True(t, byTime["09:00:00"])
	assert.True(t, byTime["17:00:00"])
}

func TestListAvailableSlots_BadDate(t *testing.T) {
	svc := newBookingFixture(&mockAppointmentRepo{}, &mockDoctorRepo{})

	_, err := svc.ListAvailableSlots(context.Background(), uuid.New(), "15/09/2026")
	assert.ErrorIs(t, err, appointment.ErrInvalidDate)
}
