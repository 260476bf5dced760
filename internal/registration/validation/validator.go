// Package validation holds the structural checks for registration requests.
// Everything here is pure: no storage lookups, no clocks beyond the caller's.
package validation

import (
	"regexp"
	"unicode/utf8"

	"enroll/internal/registration/models"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex    = regexp.MustCompile(`^\+?[1-9][0-9]{0,14}$`)
)

const passwordSpecials = "@$!%*?&#"

// Validate runs every structural rule against the request and returns one
// message per failing field. The rules are independent; all of them run so a
// single response can report every problem at once. An empty map means the
// request is structurally sound.
func Validate(req models.RegisterRequest) map[string]string {
	fields := make(map[string]string)

	switch n := utf8.RuneCountInString(req.FullName); {
	case req.FullName == "":
		fields["fullName"] = "Full name is required"
	case n < 2 || n > 100:
		fields["fullName"] = "Full name must be between 2 and 100 characters"
	}

	switch n := len(req.Username); {
	case req.Username == "":
		fields["username"] = "Username is required"
	case n < 3 || n > 50:
		fields["username"] = "Username must be between 3 and 50 characters"
	case !usernameRegex.MatchString(req.Username):
		fields["username"] = "Username can only contain letters, numbers, dots, and underscores"
	}

	switch {
	case req.Email == "":
		fields["email"] = "Email is required"
	case !emailRegex.MatchString(req.Email):
		fields["email"] = "Enter a valid email address"
	}

	switch {
	case req.Phone == "":
		fields["phone"] = "Phone is required"
	case !phoneRegex.MatchString(req.Phone):
		fields["phone"] = "Enter a valid phone number"
	}

	switch {
	case req.Password == "":
		fields["password"] = "Password is required"
	case !passwordAcceptable(req.Password):
		fields["password"] = "Password must be 8-64 chars incl. upper/lower/digit/special"
	}

	switch {
	case req.ConfirmPassword == "":
		fields["confirmPassword"] = "Confirm password is required"
	case req.ConfirmPassword != req.Password:
		fields["confirmPassword"] = "Passwords do not match"
	}

	if req.DOB == "" {
		fields["dob"] = "Date of birth is required"
	}

	if !req.AcceptTerms {
		fields["acceptTerms"] = "You must accept the terms and conditions"
	}

	return fields
}

// passwordAcceptable checks length, the four required character classes, and
// that no character falls outside letters, digits, and the special set.
// Go's regexp has no lookaheads, so the classes are counted in one pass.
func passwordAcceptable(password string) bool {
	if n := len(password); n < 8 || n > 64 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case containsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

func containsRune(set string, r rune) bool {
	for _, s := range set {
		if s == r {
			return true
		}
	}
	return false
}
