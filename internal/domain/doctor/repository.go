package doctor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Doctor) error

	// GetByID returns ErrDoctorNotFound if no such doctor exists.
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)

	Update(ctx context.Context, d *Doctor) error

	Delete(ctx context.Context, id uuid.UUID) error

	// List returns a page of all doctors; there is no ownership scoping.
	List(ctx context.Context, q *ListDoctorsQuery) (*PagedDoctors, error)
}
