package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"carelink-api/internal/domain/mapping"
	"carelink-api/internal/domain/patient"
)

type PatientRepo struct {
	db *gorm.DB
}

func NewPatientRepo(db *gorm.DB) *PatientRepo {
	return &PatientRepo{db: db}
}

func (r *PatientRepo) Create(ctx context.Context, p *patient.Patient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Owner").Create(p).Error
	})
}

func (r *PatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	var p patient.Patient
	err := r.db.WithContext(ctx).Preload("Owner").First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, patient.ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PatientRepo) GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*patient.Patient, error) {
	var p patient.Patient
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("id = ? AND created_by = ?", id, ownerID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, patient.ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PatientRepo) Update(ctx context.Context, p *patient.Patient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Owner").Save(p).Error
	})
}

// Delete removes the patient and its mappings in one transaction. The
// mappings also carry an ON DELETE CASCADE foreign key, so no orphan rows
// can survive either path.
func (r *PatientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("patient_id = ?", id).Delete(&mapping.Mapping{}).Error; err != nil {
			return err
		}
		return tx.Delete(&patient.Patient{}, "id = ?", id).Error
	})
}

func (r *PatientRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, q *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	base := r.db.WithContext(ctx).
		Model(&patient.Patient{}).
		Where("created_by = ?", ownerID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var patients []*patient.Patient
	err := base.
		Preload("Owner").
		Order("created_at DESC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&patients).Error
	if err != nil {
		return nil, err
	}

	return &patient.PagedPatients{Patients: patients, TotalCount: total}, nil
}
