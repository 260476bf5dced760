package validation

import "time"

// DOBLayout is the accepted wire format for dates of birth.
const DOBLayout = "2006-01-02"

// MinimumAge is the youngest age allowed to register, in whole years.
const MinimumAge = 13

// maximumAge bounds implausible dates of birth.
const maximumAge = 120

// DOBIssue identifies the distinct failure modes of the date-of-birth policy.
type DOBIssue string

const (
	DOBOk            DOBIssue = ""
	DOBInvalidFormat DOBIssue = "invalid_format"
	DOBFutureDate    DOBIssue = "future_date"
	DOBUnderage      DOBIssue = "underage"
	DOBImplausible   DOBIssue = "implausible_age"
)

// Message returns the human-readable message reported for the dob field.
func (i DOBIssue) Message() string {
	switch i {
	case DOBInvalidFormat:
		return "Date of birth must be a valid date in YYYY-MM-DD format"
	case DOBFutureDate:
		return "Date of birth cannot be in the future"
	case DOBUnderage:
		return "You must be at least 13 years old to register"
	case DOBImplausible:
		return "Enter a valid date of birth"
	default:
		return ""
	}
}

// ParseDOB parses a raw date-of-birth string and applies the age policy as of
// now (interpreted in UTC). On success the parsed date is returned with
// DOBOk; otherwise the zero time and the failing policy step.
func ParseDOB(raw string, now time.Time) (time.Time, DOBIssue) {
	dob, err := time.Parse(DOBLayout, raw)
	if err != nil {
		return time.Time{}, DOBInvalidFormat
	}

	today := now.UTC()
	if dob.After(today) {
		return time.Time{}, DOBFutureDate
	}

	age := AgeInYears(dob, today)
	if age < MinimumAge {
		return time.Time{}, DOBUnderage
	}
	if age > maximumAge {
		return time.Time{}, DOBImplausible
	}

	return dob, DOBOk
}

// AgeInYears computes age in whole years: the year difference, minus one when
// the birthday anniversary has not yet been reached this year.
func AgeInYears(dob, today time.Time) int {
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() ||
		(today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	return age
}
