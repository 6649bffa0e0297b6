package mapping

import (
	"time"

	"github.com/google/uuid"

	"carelink-api/internal/domain/doctor"
	"carelink-api/internal/domain/patient"
)

// Mapping assigns one doctor to one patient. The (patient, doctor) pair is
// unique at the database level; the unique-index violation is the
// authoritative duplicate signal, closing the check-then-insert race.
// Deleting a patient cascades to its mappings.
type Mapping struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	PatientID uuid.UUID        `gorm:"column:patient_id;type:uuid;not null;uniqueIndex:idx_mappings_patient_doctor"`
	DoctorID  uuid.UUID        `gorm:"column:doctor_id;type:uuid;not null;uniqueIndex:idx_mappings_patient_doctor"`
	Patient   *patient.Patient `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE"`
	Doctor    *doctor.Doctor   `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE"`

	Notes string `gorm:"column:notes;type:text"`

	// AssignedDate is stamped server-side at creation and never changes.
	AssignedDate time.Time `gorm:"column:assigned_date;type:date;not null"`
}

func (Mapping) TableName() string {
	return "clinical.patient_doctor_mappings"
}

type CreateMappingCommand struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Notes     string
}

type ListMappingsQuery struct {
	Page     int
	PageSize int
}

type PagedMappings struct {
	Mappings   []*Mapping
	TotalCount int64
}
