package models

// RegisterRequest is the caller-supplied registration payload. Field names
// follow the public wire shape; the date of birth stays a raw string until
// the date policy parses it.
type RegisterRequest struct {
	FullName        string `json:"fullName"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	DOB             string `json:"dob"`
	AcceptTerms     bool   `json:"acceptTerms"`
}
