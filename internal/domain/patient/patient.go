package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"carelink-api/internal/domain"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// ParseGender normalizes client input to a Gender. Single-letter
// abbreviations (M/F/O) and any casing are accepted.
func ParseGender(raw string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male", "m":
		return GenderMale, true
	case "female", "f":
		return GenderFemale, true
	case "other", "o":
		return GenderOther, true
	}
	return "", false
}

type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	FirstName      string    `gorm:"column:first_name;type:varchar(100);not null"`
	LastName       string    `gorm:"column:last_name;type:varchar(100);not null"`
	DateOfBirth    time.Time `gorm:"column:date_of_birth;type:date;not null"`
	Gender         Gender    `gorm:"column:gender;type:varchar(10);not null"`
	Phone          string    `gorm:"column:phone;type:varchar(20);not null"`
	Address        string    `gorm:"column:address;type:text"`
	MedicalHistory string    `gorm:"column:medical_history;type:text"`

	// Owner is set once at creation and never transferred.
	CreatedBy uuid.UUID    `gorm:"column:created_by;type:uuid;not null;index"`
	Owner     *domain.User `gorm:"foreignKey:CreatedBy"`
}

func (Patient) TableName() string {
	return "clinical.patients"
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// IsOwnedBy reports whether userID created this patient. Mutating
// operations assert this explicitly after loading the row.
func (p *Patient) IsOwnedBy(userID uuid.UUID) bool {
	return p.CreatedBy == userID
}

type CreatePatientCommand struct {
	FirstName      string
	LastName       string
	DateOfBirth    time.Time
	Gender         string
	Phone          string
	Address        string
	MedicalHistory string
}

// UpdatePatientCommand carries a partial update. Nil fields are left
// untouched; the owner reference is server-controlled and has no field here.
type UpdatePatientCommand struct {
	FirstName      *string
	LastName       *string
	DateOfBirth    *time.Time
	Gender         *string
	Phone          *string
	Address        *string
	MedicalHistory *string
}

type ListPatientsQuery struct {
	Page     int
	PageSize int
}

type PagedPatients struct {
	Patients   []*Patient
	TotalCount int64
}
