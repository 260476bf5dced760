package models

import "time"

// VerificationInfo describes the verification dispatch recorded for a new
// account. Delivery itself is an external collaborator; only the request to
// send is recorded here.
type VerificationInfo struct {
	Channel string    `json:"channel"`
	SentAt  time.Time `json:"sentAt"`
}

// RegistrationResult is the response shape for a successful registration.
type RegistrationResult struct {
	UserID       string           `json:"userId"`
	Status       string           `json:"status"`
	Verification VerificationInfo `json:"verification"`
}
