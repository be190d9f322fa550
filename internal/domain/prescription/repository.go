package prescription

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists the prescription together with its items.
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	List(ctx context.Context, q *ListPrescriptionsQuery) (*PagedPrescriptions, error)

	// UpdateFulfillment persists status and fulfilled-by/at after dispensing.
	UpdateFulfillment(ctx context.Context, p *Prescription) error
}
