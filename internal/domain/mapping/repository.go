package mapping

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new mapping. Returns ErrMappingExists when the
	// (patient, doctor) unique constraint is violated.
	Create(ctx context.Context, m *Mapping) error

	// GetByID retrieves a mapping with its patient (and the patient's
	// owner) and doctor preloaded. Returns ErrMappingNotFound if missing.
	GetByID(ctx context.Context, id uuid.UUID) (*Mapping, error)

	// Update persists mutable fields of an existing mapping (notes only in
	// practice; assigned_date is immutable).
	Update(ctx context.Context, m *Mapping) error

	Delete(ctx context.Context, id uuid.UUID) error

	// ListByOwner returns a page of mappings whose patient was created by
	// ownerID.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, q *ListMappingsQuery) (*PagedMappings, error)

	// ListByPatient returns every mapping for one patient, oldest first.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Mapping, error)
}
