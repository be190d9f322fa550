package prescription

import "errors"

var (
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrAlreadyFulfilled     = errors.New("prescription has already been fulfilled")
	ErrNoItems              = errors.New("prescription must contain at least one item")
	ErrInvalidItem          = errors.New("prescription item has invalid dosage, days, or quantity")
)
