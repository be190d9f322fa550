package notification

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create inserts the delivery record. For rows with Status sent, the
	// storage layer enforces at-most-one per (appointment_id, kind) and the
	// duplicate-key violation comes back as ErrAlreadySent; failed rows are
	// unconstrained so a later sweep may retry.
	Create(ctx context.Context, n *Notification) error

	// HasSent reports whether a sent record exists for the pair. Advisory:
	// the Create-time constraint remains the authoritative guard under
	// concurrent sweeps.
	HasSent(ctx context.Context, appointmentID uuid.UUID, kind Kind) (bool, error)

	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Notification, error)
}
