package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carelink-api/internal/domain"
	"carelink-api/internal/domain/doctor"
)

// DoctorService manages the shared doctor directory. Doctors have no owner:
// any authenticated account may create, edit, or delete any doctor.
type DoctorService struct {
	repo doctor.Repository
	log  *zap.Logger
}

func NewDoctorService(repo doctor.Repository, log *zap.Logger) *DoctorService {
	return &DoctorService{repo: repo, log: log}
}

func (s *DoctorService) CreateDoctor(ctx context.Context, cmd *doctor.CreateDoctorCommand, caller domain.Claims) (*doctor.Doctor, error) {
	if err := validateCreateDoctor(cmd); err != nil {
		return nil, err
	}

	d := &doctor.Doctor{
		FirstName:         strings.TrimSpace(cmd.FirstName),
		LastName:          strings.TrimSpace(cmd.LastName),
		Specialization:    strings.TrimSpace(cmd.Specialization),
		Phone:             strings.TrimSpace(cmd.Phone),
		Email:             strings.ToLower(strings.TrimSpace(cmd.Email)),
		YearsOfExperience: cmd.YearsOfExperience,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		s.log.Error("failed to create doctor", zap.Error(err))
		return nil, fmt.Errorf("creating doctor: %w", err)
	}

	s.log.Info("doctor created",
		zap.String("doctor_id", d.ID.String()),
		zap.String("created_by", caller.UserID.String()),
	)

	return d, nil
}

func (s *DoctorService) GetDoctor(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DoctorService) UpdateDoctor(ctx context.Context, id uuid.UUID, cmd *doctor.UpdateDoctorCommand, caller domain.Claims) (*doctor.Doctor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyDoctorUpdate(d, cmd); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, d); err != nil {
		s.log.Error("failed to update doctor", zap.Error(err))
		return nil, fmt.Errorf("updating doctor: %w", err)
	}

	return d, nil
}

func (s *DoctorService) DeleteDoctor(ctx context.Context, id uuid.UUID, caller domain.Claims) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Error("failed to delete doctor", zap.Error(err))
		return fmt.Errorf("deleting doctor: %w", err)
	}

	s.log.Info("doctor deleted",
		zap.String("doctor_id", id.String()),
		zap.String("deleted_by", caller.UserID.String()),
	)

	return nil
}

func (s *DoctorService) ListDoctors(ctx context.Context, q *doctor.ListDoctorsQuery) (*doctor.PagedDoctors, error) {
	clampPage(&q.Page, &q.PageSize)
	return s.repo.List(ctx, q)
}

func validateCreateDoctor(cmd *doctor.CreateDoctorCommand) error {
	verr := &ValidationError{}

	if strings.TrimSpace(cmd.FirstName) == "" {
		verr.add("first_name", "This field is required.")
	}
	if strings.TrimSpace(cmd.LastName) == "" {
		verr.add("last_name", "This field is required.")
	}
	if strings.TrimSpace(cmd.Specialization) == "" {
		verr.add("specialization", "This field is required.")
	}
	if strings.TrimSpace(cmd.Email) == "" {
		verr.add("email", "This field is required.")
	}
	if !domain.ValidPhone(cmd.Phone) {
		verr.add("phone", doctor.ErrInvalidPhone.Error())
	}
	if !doctor.ValidExperience(cmd.YearsOfExperience) {
		verr.add("years_of_experience", doctor.ErrInvalidExperience.Error())
	}

	if !verr.empty() {
		return verr
	}
	return nil
}

func applyDoctorUpdate(d *doctor.Doctor, cmd *doctor.UpdateDoctorCommand) error {
	verr := &ValidationError{}

	if cmd.FirstName != nil {
		if strings.TrimSpace(*cmd.FirstName) == "" {
			verr.add("first_name", "This field may not be blank.")
		} else {
			d.FirstName = strings.TrimSpace(*cmd.FirstName)
		}
	}
	if cmd.LastName != nil {
		if strings.TrimSpace(*cmd.LastName) == "" {
			verr.add("last_name", "This field may not be blank.")
		} else {
			d.LastName = strings.TrimSpace(*cmd.LastName)
		}
	}
	if cmd.Specialization != nil {
		if strings.TrimSpace(*cmd.Specialization) == "" {
			verr.add("specialization", "This field may not be blank.")
		} else {
			d.Specialization = strings.TrimSpace(*cmd.Specialization)
		}
	}
	if cmd.Phone != nil {
		if domain.ValidPhone(*cmd.Phone) {
			d.Phone = strings.TrimSpace(*cmd.Phone)
		} else {
			verr.add("phone", doctor.ErrInvalidPhone.Error())
		}
	}
	if cmd.Email != nil {
		if strings.TrimSpace(*cmd.Email) == "" {
			verr.add("email", "This field may not be blank.")
		} else {
			d.Email = strings.ToLower(strings.TrimSpace(*cmd.Email))
		}
	}
	if cmd.YearsOfExperience != nil {
		if doctor.ValidExperience(*cmd.YearsOfExperience) {
			d.YearsOfExperience = *cmd.YearsOfExperience
		} else {
			verr.add("years_of_experience", doctor.ErrInvalidExperience.Error())
		}
	}

	if !verr.empty() {
		return verr
	}
	return nil
}
