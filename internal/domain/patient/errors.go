package patient

import "errors"

var (
	// ErrPatientNotFound covers both a missing id and an id owned by another
	// account. The two cases are intentionally indistinguishable to callers.
	ErrPatientNotFound    = errors.New("patient not found")
	ErrInvalidGender      = errors.New("invalid gender value")
	ErrInvalidDateOfBirth = errors.New("date of birth cannot be in the future")
	ErrInvalidPhone       = errors.New("phone number must be between 10 and 15 digits")
)
