package audit

import "time"

// Actions recorded by the registration flow.
const (
	ActionUserRegistered = "user.registered"
)

// Event is one append-only audit record.
type Event struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	UserID    string    `json:"userId,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
