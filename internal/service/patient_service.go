package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carelink-api/internal/domain"
	"carelink-api/internal/domain/patient"
)

type PatientService struct {
	repo patient.Repository
	log  *zap.Logger
}

func NewPatientService(repo patient.Repository, log *zap.Logger) *PatientService {
	return &PatientService{repo: repo, log: log}
}

// CreatePatient validates the command, sets the caller as owner, and
// persists the record. The returned patient has its owner preloaded.
func (s *PatientService) CreatePatient(ctx context.Context, cmd *patient.CreatePatientCommand, caller domain.Claims) (*patient.Patient, error) {
	gender, err := validateCreatePatient(cmd)
	if err != nil {
		return nil, err
	}

	p := &patient.Patient{
		FirstName:      strings.TrimSpace(cmd.FirstName),
		LastName:       strings.TrimSpace(cmd.LastName),
		DateOfBirth:    cmd.DateOfBirth,
		Gender:         gender,
		Phone:          strings.TrimSpace(cmd.Phone),
		Address:        cmd.Address,
		MedicalHistory: cmd.MedicalHistory,
		CreatedBy:      caller.UserID,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Error("failed to create patient", zap.Error(err))
		return nil, fmt.Errorf("creating patient: %w", err)
	}

	s.log.Info("patient created",
		zap.String("patient_id", p.ID.String()),
		zap.String("created_by", caller.UserID.String()),
	)

	// Reload with the owner preloaded so responses can carry the owner's
	// display name.
	return s.repo.GetOwned(ctx, p.ID, caller.UserID)
}

// GetPatient retrieves one of the caller's own patients. A patient owned by
// another account is reported as not found.
func (s *PatientService) GetPatient(ctx context.Context, id uuid.UUID, caller domain.Claims) (*patient.Patient, error) {
	return s.repo.GetOwned(ctx, id, caller.UserID)
}

// UpdatePatient applies a full or partial update to one of the caller's own
// patients. The owner reference is server-controlled and never changes.
func (s *PatientService) UpdatePatient(ctx context.Context, id uuid.UUID, cmd *patient.UpdatePatientCommand, caller domain.Claims) (*patient.Patient, error) {
	p, err := s.repo.GetOwned(ctx, id, caller.UserID)
	if err != nil {
		return nil, err
	}

	if err := applyPatientUpdate(p, cmd); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		s.log.Error("failed to update patient", zap.Error(err))
		return nil, fmt.Errorf("updating patient: %w", err)
	}

	return p, nil
}

// DeletePatient removes a patient and all of its mappings. Unlike reads,
// the lookup here is unscoped so a non-owner is refused rather than told
// the record does not exist.
func (s *PatientService) DeletePatient(ctx context.Context, id uuid.UUID, caller domain.Claims) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !p.IsOwnedBy(caller.UserID) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Error("failed to delete patient", zap.Error(err))
		return fmt.Errorf("deleting patient: %w", err)
	}

	s.log.Info("patient deleted",
		zap.String("patient_id", id.String()),
		zap.String("deleted_by", caller.UserID.String()),
	)

	return nil
}

// ListPatients returns a page of the caller's own patients.
func (s *PatientService) ListPatients(ctx context.Context, q *patient.ListPatientsQuery, caller domain.Claims) (*patient.PagedPatients, error) {
	clampPage(&q.Page, &q.PageSize)
	return s.repo.ListByOwner(ctx, caller.UserID, q)
}

func clampPage(page, pageSize *int) {
	if *pageSize <= 0 || *pageSize > 100 {
		*pageSize = 20
	}
	if *page <= 0 {
		*page = 1
	}
}

func validateCreatePatient(cmd *patient.CreatePatientCommand) (patient.Gender, error) {
	verr := &ValidationError{}

	if strings.TrimSpace(cmd.FirstName) == "" {
		verr.add("first_name", "This field is required.")
	}
	if strings.TrimSpace(cmd.LastName) == "" {
		verr.add("last_name", "This field is required.")
	}
	if cmd.DateOfBirth.IsZero() {
		verr.add("date_of_birth", "This field is required.")
	} else if cmd.DateOfBirth.After(time.Now()) {
		verr.add("date_of_birth", patient.ErrInvalidDateOfBirth.Error())
	}

	gender, ok := patient.ParseGender(cmd.Gender)
	if !ok {
		verr.add("gender", patient.ErrInvalidGender.Error())
	}

	if !domain.ValidPhone(cmd.Phone) {
		verr.add("phone", patient.ErrInvalidPhone.Error())
	}

	if !verr.empty() {
		return "", verr
	}
	return gender, nil
}

func applyPatientUpdate(p *patient.Patient, cmd *patient.UpdatePatientCommand) error {
	verr := &ValidationError{}

	if cmd.FirstName != nil {
		if strings.TrimSpace(*cmd.FirstName) == "" {
			verr.add("first_name", "This field may not be blank.")
		} else {
			p.FirstName = strings.TrimSpace(*cmd.FirstName)
		}
	}
	if cmd.LastName != nil {
		if strings.TrimSpace(*cmd.LastName) == "" {
			verr.add("last_name", "This field may not be blank.")
		} else {
			p.LastName = strings.TrimSpace(*cmd.LastName)
		}
	}
	if cmd.DateOfBirth != nil {
		if cmd.DateOfBirth.After(time.Now()) {
			verr.add("date_of_birth", patient.ErrInvalidDateOfBirth.Error())
		} else {
			p.DateOfBirth = *cmd.DateOfBirth
		}
	}
	if cmd.Gender != nil {
		if gender, ok := patient.ParseGender(*cmd.Gender); ok {
			p.Gender = gender
		} else {
			verr.add("gender", patient.ErrInvalidGender.Error())
		}
	}
	if cmd.Phone != nil {
		if domain.ValidPhone(*cmd.Phone) {
			p.Phone = strings.TrimSpace(*cmd.Phone)
		} else {
			verr.add("phone", patient.ErrInvalidPhone.Error())
		}
	}
	if cmd.Address != nil {
		p.Address = *cmd.Address
	}
	if cmd.MedicalHistory != nil {
		p.MedicalHistory = *cmd.MedicalHistory
	}

	if !verr.empty() {
		return verr
	}
	return nil
}
