// Package memory provides an in-process implementation of every repository
// interface. It backs the "memory" database driver for local development and
// the test suites. Semantics mirror the Postgres layer: scoped lookups,
// unique constraints, and cascade deletion of a patient's mappings.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"carelink-api/internal/domain"
	"carelink-api/internal/domain/doctor"
	"carelink-api/internal/domain/mapping"
	"carelink-api/internal/domain/patient"
)

type Store struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]domain.User
	patients map[uuid.UUID]patient.Patient
	doctors  map[uuid.UUID]doctor.Doctor
	mappings map[uuid.UUID]mapping.Mapping
}

func NewStore() *Store {
	return &Store{
		users:    map[uuid.UUID]domain.User{},
		patients: map[uuid.UUID]patient.Patient{},
		doctors:  map[uuid.UUID]doctor.Doctor{},
		mappings: map[uuid.UUID]mapping.Mapping{},
	}
}

func (s *Store) Users() *UserRepo       { return &UserRepo{store: s} }
func (s *Store) Patients() *PatientRepo { return &PatientRepo{store: s} }
func (s *Store) Doctors() *DoctorRepo   { return &DoctorRepo{store: s} }
func (s *Store) Mappings() *MappingRepo { return &MappingRepo{store: s} }

func newID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

// ownerOf returns a detached copy of a user, for attaching to patients the
// way the Postgres layer preloads the Owner association.
func (s *Store) ownerOf(id uuid.UUID) *domain.User {
	if u, ok := s.users[id]; ok {
		cp := u
		return &cp
	}
	return nil
}

func (s *Store) patientCopy(id uuid.UUID) *patient.Patient {
	p, ok := s.patients[id]
	if !ok {
		return nil
	}
	cp := p
	cp.Owner = s.ownerOf(p.CreatedBy)
	return &cp
}

func (s *Store) doctorCopy(id uuid.UUID) *doctor.Doctor {
	d, ok := s.doctors[id]
	if !ok {
		return nil
	}
	cp := d
	return &cp
}

func (s *Store) mappingCopy(id uuid.UUID) *mapping.Mapping {
	m, ok := s.mappings[id]
	if !ok {
		return nil
	}
	cp := m
	cp.Patient = s.patientCopy(m.PatientID)
	cp.Doctor = s.doctorCopy(m.DoctorID)
	return &cp
}

func touch(createdAt *time.Time, updatedAt *time.Time) {
	now := time.Now()
	if createdAt != nil && createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt != nil {
		*updatedAt = now
	}
}
