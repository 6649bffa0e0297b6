package doctor

import "errors"

var (
	ErrDoctorNotFound    = errors.New("doctor not found")
	ErrInvalidExperience = errors.New("years of experience must be between 0 and 70")
	ErrInvalidPhone      = errors.New("phone number must be between 10 and 15 digits")
)
