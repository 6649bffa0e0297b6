package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"carelink-api/internal/domain/mapping"
)

type MappingRepo struct {
	db *gorm.DB
}

func NewMappingRepo(db *gorm.DB) *MappingRepo {
	return &MappingRepo{db: db}
}

// Create inserts the mapping, relying on the (patient_id, doctor_id)
// unique index as the authoritative duplicate check.
func (r *MappingRepo) Create(ctx context.Context, m *mapping.Mapping) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Patient", "Doctor").Create(m).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return mapping.ErrMappingExists
		}
		return err
	}
	return nil
}

func (r *MappingRepo) GetByID(ctx context.Context, id uuid.UUID) (*mapping.Mapping, error) {
	var m mapping.Mapping
	err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Patient.Owner").
		Preload("Doctor").
		First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mapping.ErrMappingNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MappingRepo) Update(ctx context.Context, m *mapping.Mapping) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Patient", "Doctor").Save(m).Error
	})
}

func (r *MappingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&mapping.Mapping{}, "id = ?", id).Error
	})
}

func (r *MappingRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, q *mapping.ListMappingsQuery) (*mapping.PagedMappings, error) {
	base := r.db.WithContext(ctx).
		Model(&mapping.Mapping{}).
		Joins("JOIN clinical.patients p ON p.id = patient_doctor_mappings.patient_id").
		Where("p.created_by = ?", ownerID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var mappings []*mapping.Mapping
	err := base.
		Preload("Patient").
		Preload("Patient.Owner").
		Preload("Doctor").
		Order("patient_doctor_mappings.created_at DESC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&mappings).Error
	if err != nil {
		return nil, err
	}

	return &mapping.PagedMappings{Mappings: mappings, TotalCount: total}, nil
}

func (r *MappingRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*mapping.Mapping, error) {
	var mappings []*mapping.Mapping
	err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Patient.Owner").
		Preload("Doctor").
		Where("patient_id = ?", patientID).
		Order("created_at ASC").
		Find(&mappings).Error
	if err != nil {
		return nil, err
	}
	return mappings, nil
}
