package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"carelink-api/internal/domain/doctor"
)

type DoctorRepo struct {
	store *Store
}

func (r *DoctorRepo) Create(ctx context.Context, d *doctor.Doctor) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	d.ID = newID(d.ID)
	touch(&d.CreatedAt, &d.UpdatedAt)
	r.store.doctors[d.ID] = *d
	return nil
}

func (r *DoctorRepo) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if d := r.store.doctorCopy(id); d != nil {
		return d, nil
	}
	return nil, doctor.ErrDoctorNotFound
}

func (r *DoctorRepo) Update(ctx context.Context, d *doctor.Doctor) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.doctors[d.ID]; !ok {
		return doctor.ErrDoctorNotFound
	}
	touch(nil, &d.UpdatedAt)
	r.store.doctors[d.ID] = *d
	return nil
}

func (r *DoctorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.doctors[id]; !ok {
		return doctor.ErrDoctorNotFound
	}
	delete(r.store.doctors, id)

	for mid, m := range r.store.mappings {
		if m.DoctorID == id {
			delete(r.store.mappings, mid)
		}
	}
	return nil
}

func (r *DoctorRepo) List(ctx context.Context, q *doctor.ListDoctorsQuery) (*doctor.PagedDoctors, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	all := make([]*doctor.Doctor, 0, len(r.store.doctors))
	for id := range r.store.doctors {
		all = append(all, r.store.doctorCopy(id))
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	return &doctor.PagedDoctors{
		Doctors:    pageOf(all, q.Page, q.PageSize),
		TotalCount: int64(len(all)),
	}, nil
}
