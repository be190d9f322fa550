package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/pulseai-health/clinic-api/internal/domain/appointment"
	"github.com/pulseai-health/clinic-api/internal/domain/pharmacy"
	"github.com/pulseai-health/clinic-api/internal/domain/prescription"
)

type mockPrescriptionRepo struct {
	CreateFn  func(ctx context.Context, p *prescription.Prescription) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error)
	ListFn    func(ctx context.Context, q *prescription.ListPrescriptionsQuery) (*prescription.PagedPrescriptions, error)
	UpdateFn  func(ctx context.Context, p *prescription.Prescription) error
}

func (m *mockPrescriptionRepo) Create(ctx context.Context, p *prescription.Prescription) error {
	if m.CreateFn == nil {
		return errMockNotWired
	}
	return m.CreateFn(ctx, p)
}

func (m *mockPrescriptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	if m.GetByIDFn == nil {
		return nil, errMockNotWired
	}
	return m.GetByIDFn(ctx, id)
}

func (m *mockPrescriptionRepo) List(ctx context.Context, q *prescription.ListPrescriptionsQuery) (*prescription.PagedPrescriptions, error) {
	if m.ListFn == nil {
		return nil, errMockNotWired
	}
	return m.ListFn(ctx, q)
}

func (m *mockPrescriptionRepo) UpdateFulfillment(ctx context.Context, p *prescription.Prescription) error {
	if m.UpdateFn == nil {
		return errMockNotWired
	}
	return m.UpdateFn(ctx, p)
}

type mockMedicationRepo struct {
	GetByIDFn     func(ctx context.Context, id uuid.UUID) (*pharmacy.Medication, error)
	AdjustStockFn func(ctx context.Context, id uuid.UUID, delta int) (*pharmacy.Medication, error)
}

func (m *mockMedicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*pharmacy.Medication, error) {
	if m.GetByIDFn == nil {
		return &pharmacy.Medication{ID: id, Name: "Test Med", StockQuantity: 100}, nil
	}
	return m.GetByIDFn(ctx, id)
}

func (m *mockMedicationRepo) List(ctx context.Context) ([]*pharmacy.Medication, error) {
	return nil, errMockNotWired
}

func (m *mockMedicationRepo) SearchByName(ctx context.Context, prefix string, limit int) ([]*pharmacy.Medication, error) {
	return nil, errMockNotWired
}

func (m *mockMedicationRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*pharmacy.Medication, error) {
	if m.AdjustStockFn == nil {
		return &pharmacy.Medication{ID: id}, nil
	}
	return m.AdjustStockFn(ctx, id, delta)
}

func newPrescriptionFixture(rxRepo *mockPrescriptionRepo, apptRepo *mockAppointmentRepo, medRepo *mockMedicationRepo) *PrescriptionService {
	return NewPrescriptionService(rxRepo, apptRepo, medRepo, newTestAuditService(), testMetrics, zap.NewNop())
}

func validIssueCommand() *prescription.IssuePrescriptionCommand {
	return &prescription.IssuePrescriptionCommand{
		AppointmentID: uuid.New(),
		DoctorID:      uuid.New(),
		Items: []prescription.IssueItem{
			{MedicationID: uuid.New(), Dosage: "500mg twice daily", Days: 5, Quantity: 10},
		},
	}
}

func TestIssuePrescription(t *testing.T) {
	patientID := uuid.New()
	apptRepo := &mockAppointmentRepo{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
			return &appointment.Appointment{ID: id, PatientID: patientID}, nil
		},
	}
	rxRepo := &mockPrescriptionRepo{
		CreateFn: func(ctx context.Context, p *prescription.Prescription) error {
			p.ID = uuid.New()
			return nil
		},
	}
	svc := newPrescriptionFixture(rxRepo, apptRepo, &mockMedicationRepo{})

	p, err := svc.Issue(context.Background(), validIssueCommand(), uuid.New(), "doctor", "127.0.0.1")
	assert.NoError(t, err)
	assert.Equal(t, patientID, p.PatientID, "patient comes from the appointment, not the request")
	assert.Equal(t, prescription.StatusPending, p.Status)
	assert.Len(t, p.Items, 1)
}

func TestIssuePrescription_NoItems(t *testing.T) {
	svc := newPrescriptionFixture(&mockPrescriptionRepo{}, &mockAppointmentRepo{}, &mockMedicationRepo{})

	_, err := svc.Issue(context.Background(), &prescription.IssuePrescriptionCommand{
		AppointmentID: uuid.New(),
		DoctorID:      uuid.New(),
	}, uuid.New(), "doctor", "127.0.0.1")
	assert.ErrorIs(t, err, prescription.ErrNoItems)
}

func TestIssuePrescription_UnknownMedication(t *testing.T) {
	apptRepo := &mockAppointmentRepo{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
			return &appointment.Appointment{ID: id, PatientID: uuid.New()}, nil
		},
	}
	medRepo := &mockMedicationRepo{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*pharmacy.Medication, error) {
			return nil, pharmacy.ErrMedicationNotFound
		},
	}
	svc := newPrescriptionFixture(&mockPrescriptionRepo{}, apptRepo, medRepo)

	_, err := svc.Issue(context.Background(), validIssueCommand(), uuid.New(), "doctor", "127.0.0.1")
	assert.ErrorIs(t, err, pharmacy.ErrMedicationNotFound)
}

func TestIssuePrescription_InvalidItems(t *testing.T) {
	svc := newPrescriptionFixture(&mockPrescriptionRepo{}, &mockAppointmentRepo{}, &mockMedicationRepo{})

	cmd := validIssueCommand()
	cmd.Items[0].Dosage = " "
	cmd.Items[0].Days = 0
	cmd.Items[0].Quantity = -1

	_, err := svc.Issue(context.Background(), cmd, uuid.New(), "doctor", "127.0.0.1")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
}

func TestFulfillPrescription(t *testing.T) {
	medID := uuid.New()
	p := &prescription.Prescription{
		ID:     uuid.New(),
		Status: prescription.StatusPending,
		Items:  []prescription.Item{{MedicationID: medID, Quantity: 10}},
	}

	var adjusted []int
	rxRepo := &mockPrescriptionRepo{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) { return p, nil },
		UpdateFn:  func(ctx context.Context, p *prescription.Prescription) error { return nil },
	}
	medRepo := &mockMedicationRepo{
		AdjustStockFn: func(ctx context.Context, id uuid.UUID, delta int) (*pharmacy.Medication, error) {
			adjusted = append(adjusted, delta)
			return &pharmacy.Medication{ID: id}, nil
		},
	}
	svc := newPrescriptionFixture(rxRepo, &mockAppointmentRepo{}, medRepo)

	pharmacistID := uuid.New()
	got, err := svc.Fulfill(context.Background(), p.ID, pharmacistID, "127.0.0.1")
	assert.NoError(t, err)
	assert.Equal(t, prescription.StatusFulfilled, got.Status)
	assert.Equal(t, []int{-10}, adjusted)
	if assert.NotNil(t, got.FulfilledBy) {
		assert.Equal(t, pharmacistID, *got.FulfilledBy)
	}
	assert.NotNil(t, got.FulfilledAt)
}

func TestFulfillPrescription_PartialOnStockout(t *testing.T) {
	p := &prescription.Prescription{
		ID:     uuid.New(),
		Status: prescription.StatusPending,
		Items: []prescription.Item{
			{MedicationID: uuid.New(), Quantity: 5},
			{MedicationID: uuid.New(), Quantity: 500},
		},
	}

	rxRepo := &mockPrescriptionRepo{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) { return p, nil },
		UpdateFn:  func(ctx context.Context, p *prescription.Prescription) error { return nil },
	}
	medRepo := &mockMedicationRepo{
		AdjustStockFn: func(ctx context.Context, id uuid.UUID, delta int) (*pharmacy.Medication, error) {
			if delta < -100 {
				return nil, pharmacy.ErrInsufficientStock
			}
			return &pharmacy.Medication{ID: id}, nil
		},
	}
	svc := newPrescriptionFixture(rxRepo, &mockAppointmentRepo{}, medRepo)

	got, err := svc.Fulfill(context.Background(), p.ID, uuid.New(), "127.0.0.1")
	assert.NoError(t, err)
	assert.Equal(t, prescription.StatusPartial, got.Status)
}

func TestFulfillPrescription_AlreadyFulfilled(t *testing.T) {
	p := &prescription.Prescription{ID: uuid.New(), Status: prescription.StatusFulfilled}
	rxRepo := &mockPrescriptionRepo{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) { return p, nil },
	}
	svc := newPrescriptionFixture(rxRepo, &mockAppointmentRepo{}, &mockMedicationRepo{})

	_, err := svc.Fulfill(context.Background(), p.ID, uuid.New(), "127.0.0.1")
	assert.ErrorIs(t, err, prescription.ErrAlreadyFulfilled)
}
