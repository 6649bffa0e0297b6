package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new patient with its owner already set.
	Create(ctx context.Context, p *Patient) error

	// GetByID retrieves a patient by primary key regardless of owner.
	// Returns ErrPatientNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	// GetOwned retrieves a patient only if ownerID created it. A patient
	// owned by someone else yields ErrPatientNotFound.
	GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*Patient, error)

	// Update persists the full current state of an already-loaded patient.
	Update(ctx context.Context, p *Patient) error

	// Delete hard-deletes the patient and, in the same transaction, all of
	// its doctor mappings.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByOwner returns a page of patients created by ownerID.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, q *ListPatientsQuery) (*PagedPatients, error)
}
