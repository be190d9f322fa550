package service

import (
	"context"
	"errors"
	"strings"
)

var ErrForbidden = errors.New("forbidden: insufficient permissions")

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// Messenger is the outbound messaging gateway: one send per notification,
// addressed by phone number, returning the provider's message id.
type Messenger interface {
	Send(ctx context.Context, toNumber, body string) (string, error)
}

type AuditEntry struct {
	UserID       string
	UserRole     string
	Action       string
	ResourceType string
	ResourceID   string
	IPAddress    string
	RequestID    string
	StatusCode   int
	Changes      string
}
