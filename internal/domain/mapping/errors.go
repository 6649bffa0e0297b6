package mapping

import "errors"

var (
	// ErrMappingNotFound covers missing ids and mappings whose patient
	// belongs to another account; callers cannot tell the two apart.
	ErrMappingNotFound = errors.New("mapping not found")
	ErrMappingExists   = errors.New("this doctor is already assigned to this patient")
)
