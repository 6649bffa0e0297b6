package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"carelink-api/internal/domain/patient"
)

type PatientRepo struct {
	store *Store
}

func (r *PatientRepo) Create(ctx context.Context, p *patient.Patient) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p.ID = newID(p.ID)
	touch(&p.CreatedAt, &p.UpdatedAt)

	stored := *p
	stored.Owner = nil
	r.store.patients[p.ID] = stored
	return nil
}

func (r *PatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if p := r.store.patientCopy(id); p != nil {
		return p, nil
	}
	return nil, patient.ErrPatientNotFound
}

func (r *PatientRepo) GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*patient.Patient, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p := r.store.patientCopy(id)
	if p == nil || p.CreatedBy != ownerID {
		return nil, patient.ErrPatientNotFound
	}
	return p, nil
}

func (r *PatientRepo) Update(ctx context.Context, p *patient.Patient) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.patients[p.ID]; !ok {
		return patient.ErrPatientNotFound
	}
	touch(nil, &p.UpdatedAt)

	stored := *p
	stored.Owner = nil
	r.store.patients[p.ID] = stored
	return nil
}

// Delete removes the patient and cascades to its mappings, matching the
// foreign key behavior of the Postgres layer.
func (r *PatientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.patients[id]; !ok {
		return patient.ErrPatientNotFound
	}
	delete(r.store.patients, id)

	for mid, m := range r.store.mappings {
		if m.PatientID == id {
			delete(r.store.mappings, mid)
		}
	}
	return nil
}

func (r *PatientRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, q *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	owned := make([]*patient.Patient, 0)
	for id, p := range r.store.patients {
		if p.CreatedBy == ownerID {
			owned = append(owned, r.store.patientCopy(id))
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	return &patient.PagedPatients{
		Patients:   pageOf(owned, q.Page, q.PageSize),
		TotalCount: int64(len(owned)),
	}, nil
}

func pageOf[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
