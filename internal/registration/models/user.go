package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a user account.
type Status string

const (
	// StatusPendingVerification is the sole status registration assigns.
	// Confirming verification is a separate flow.
	StatusPendingVerification Status = "pending_verification"
)

// VerificationChannelEmail is the only dispatch channel wired today.
const VerificationChannelEmail = "email"

// User is the persisted account record. Uniqueness of Username, Email and
// Phone is enforced by the store; the identifier is immutable after creation.
type User struct {
	ID           string
	FullName     string
	Username     string
	Email        string
	Phone        string
	PasswordHash string
	DOB          time.Time
	Status       Status
	AcceptTerms  bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	VerifiedAt   *time.Time
}

// NewUserID generates an opaque user identifier of the form usr_<10 hex>.
func NewUserID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "usr_" + hex[:10]
}
