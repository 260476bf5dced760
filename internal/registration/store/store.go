// Package store persists user records.
//
// Error contract:
// - FindBy* return sentinel.ErrNotFound (wrapped) when no user matches.
// - Create returns *ConflictError when a uniqueness constraint rejects the
//   write; the error names every offending field so a lost race reports the
//   same field→message shape the upfront check would have.
// - Anything else is an infrastructure failure, wrapped with context.
package store

import (
	"context"
	"fmt"
	"strings"

	"enroll/internal/registration/models"
	"enroll/pkg/platform/sentinel"
)

// UserStore is the persistence boundary for user records. Create must be
// atomic with respect to the username/email/phone uniqueness constraints:
// the read-then-write window in the registration flow cannot close races on
// its own.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// Uniqueness conflict messages, keyed by request field name.
var conflictMessages = map[string]string{
	"username": "Username already exists",
	"email":    "Email already registered",
	"phone":    "Phone number already registered",
}

// ConflictMessage returns the canonical message for a conflicting field.
func ConflictMessage(field string) string {
	if msg, ok := conflictMessages[field]; ok {
		return msg
	}
	return "Already in use"
}

// ConflictError reports which uniqueness constraints rejected a Create.
type ConflictError struct {
	Fields []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("unique constraint violated: %s", strings.Join(e.Fields, ", "))
}

// Unwrap lets callers match errors.Is(err, sentinel.ErrConflict).
func (e *ConflictError) Unwrap() error { return sentinel.ErrConflict }

// FieldMessages renders the conflict as a field→message map.
func (e *ConflictError) FieldMessages() map[string]string {
	fields := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		fields[f] = ConflictMessage(f)
	}
	return fields
}
