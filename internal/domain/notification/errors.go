package notification

import "errors"

var (
	// ErrAlreadySent signals the (appointment, kind) pair already has a sent
	// row; it is the duplicate-key translation of the reminder uniqueness index.
	ErrAlreadySent = errors.New("notification already sent for this appointment and kind")
	ErrInvalidKind = errors.New("invalid notification kind")
)
