package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carelink-api/internal/domain"
	"carelink-api/internal/domain/doctor"
	"carelink-api/internal/domain/mapping"
	"carelink-api/internal/domain/patient"
)

// MappingService manages patient-doctor assignments. Every operation is
// scoped through the ownership of the referenced patient.
type MappingService struct {
	repo        mapping.Repository
	patientRepo patient.Repository
	doctorRepo  doctor.Repository
	log         *zap.Logger
}

func NewMappingService(repo mapping.Repository, patientRepo patient.Repository, doctorRepo doctor.Repository, log *zap.Logger) *MappingService {
	return &MappingService{repo: repo, patientRepo: patientRepo, doctorRepo: doctorRepo, log: log}
}

// CreateMapping assigns a doctor to one of the caller's patients. Checks run
// in a fixed order: reference resolution (404), ownership (400), duplicate
// (400). The duplicate pre-check is advisory; the database unique constraint
// is what actually closes the race, and its violation is reported the same
// way.
func (s *MappingService) CreateMapping(ctx context.Context, cmd *mapping.CreateMappingCommand, caller domain.Claims) (*mapping.Mapping, error) {
	p, err := s.patientRepo.GetByID(ctx, cmd.PatientID)
	if err != nil {
		return nil, err
	}
	if _, err := s.doctorRepo.GetByID(ctx, cmd.DoctorID); err != nil {
		return nil, err
	}

	if !p.IsOwnedBy(caller.UserID) {
		return nil, newValidationError("patient", "You can only assign doctors to your own patients.")
	}

	m := &mapping.Mapping{
		PatientID:    cmd.PatientID,
		DoctorID:     cmd.DoctorID,
		Notes:        cmd.Notes,
		AssignedDate: time.Now(),
	}

	if err := s.repo.Create(ctx, m); err != nil {
		if errors.Is(err, mapping.ErrMappingExists) {
			return nil, newValidationError("doctor", "This doctor is already assigned to this patient.")
		}
		s.log.Error("failed to create mapping", zap.Error(err))
		return nil, fmt.Errorf("creating mapping: %w", err)
	}

	s.log.Info("mapping created",
		zap.String("mapping_id", m.ID.String()),
		zap.String("patient_id", cmd.PatientID.String()),
		zap.String("doctor_id", cmd.DoctorID.String()),
	)

	// Reload with patient and doctor preloaded for response shaping.
	return s.repo.GetByID(ctx, m.ID)
}

// GetMapping retrieves a mapping visible to the caller. Mappings of other
// accounts' patients are reported as not found.
func (s *MappingService) GetMapping(ctx context.Context, id uuid.UUID, caller domain.Claims) (*mapping.Mapping, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Patient == nil || !m.Patient.IsOwnedBy(caller.UserID) {
		return nil, mapping.ErrMappingNotFound
	}
	return m, nil
}

// UpdateNotes changes the free-text notes of a mapping. Nothing else on a
// mapping is client-mutable.
func (s *MappingService) UpdateNotes(ctx context.Context, id uuid.UUID, notes string, caller domain.Claims) (*mapping.Mapping, error) {
	m, err := s.GetMapping(ctx, id, caller)
	if err != nil {
		return nil, err
	}

	m.Notes = notes
	if err := s.repo.Update(ctx, m); err != nil {
		s.log.Error("failed to update mapping", zap.Error(err))
		return nil, fmt.Errorf("updating mapping: %w", err)
	}

	return m, nil
}

// DeleteMapping removes an assignment. The lookup is unscoped so that a
// caller who does not own the mapping's patient is refused outright.
func (s *MappingService) DeleteMapping(ctx context.Context, id uuid.UUID, caller domain.Claims) error {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if m.Patient == nil || !m.Patient.IsOwnedBy(caller.UserID) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Error("failed to delete mapping", zap.Error(err))
		return fmt.Errorf("deleting mapping: %w", err)
	}

	s.log.Info("mapping deleted",
		zap.String("mapping_id", id.String()),
		zap.String("deleted_by", caller.UserID.String()),
	)

	return nil
}

// ListMappings returns a page of mappings whose patients the caller owns.
func (s *MappingService) ListMappings(ctx context.Context, q *mapping.ListMappingsQuery, caller domain.Claims) (*mapping.PagedMappings, error) {
	clampPage(&q.Page, &q.PageSize)
	return s.repo.ListByOwner(ctx, caller.UserID, q)
}

// MappingsByPatient returns one of the caller's patients together with all
// of its doctor assignments. A patient owned by another account is reported
// as not found.
func (s *MappingService) MappingsByPatient(ctx context.Context, patientID uuid.UUID, caller domain.Claims) (*patient.Patient, []*mapping.Mapping, error) {
	p, err := s.patientRepo.GetOwned(ctx, patientID, caller.UserID)
	if err != nil {
		return nil, nil, err
	}

	mappings, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, nil, fmt.Errorf("listing mappings for patient: %w", err)
	}

	return p, mappings, nil
}
