package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"carelink-api/internal/domain/mapping"
)

type MappingRepo struct {
	store *Store
}

// Create enforces the (patient, doctor) uniqueness the way the Postgres
// layer's unique index does: atomically with the insert, under the store
// lock.
func (r *MappingRepo) Create(ctx context.Context, m *mapping.Mapping) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.mappings {
		if existing.PatientID == m.PatientID && existing.DoctorID == m.DoctorID {
			return mapping.ErrMappingExists
		}
	}

	m.ID = newID(m.ID)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	stored := *m
	stored.Patient = nil
	stored.Doctor = nil
	r.store.mappings[m.ID] = stored
	return nil
}

func (r *MappingRepo) GetByID(ctx context.Context, id uuid.UUID) (*mapping.Mapping, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if m := r.store.mappingCopy(id); m != nil {
		return m, nil
	}
	return nil, mapping.ErrMappingNotFound
}

func (r *MappingRepo) Update(ctx context.Context, m *mapping.Mapping) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.mappings[m.ID]; !ok {
		return mapping.ErrMappingNotFound
	}

	stored := *m
	stored.Patient = nil
	stored.Doctor = nil
	r.store.mappings[m.ID] = stored
	return nil
}

func (r *MappingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.mappings[id]; !ok {
		return mapping.ErrMappingNotFound
	}
	delete(r.store.mappings, id)
	return nil
}

func (r *MappingRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, q *mapping.ListMappingsQuery) (*mapping.PagedMappings, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	owned := make([]*mapping.Mapping, 0)
	for id, m := range r.store.mappings {
		if p, ok := r.store.patients[m.PatientID]; ok && p.CreatedBy == ownerID {
			owned = append(owned, r.store.mappingCopy(id))
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	return &mapping.PagedMappings{
		Mappings:   pageOf(owned, q.Page, q.PageSize),
		TotalCount: int64(len(owned)),
	}, nil
}

func (r *MappingRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*mapping.Mapping, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*mapping.Mapping, 0)
	for id, m := range r.store.mappings {
		if m.PatientID == patientID {
			out = append(out, r.store.mappingCopy(id))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
