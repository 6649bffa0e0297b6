package doctor

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxYearsOfExperience is the inclusive upper bound for a plausible career.
const MaxYearsOfExperience = 70

type Doctor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	FirstName         string `gorm:"column:first_name;type:varchar(100);not null"`
	LastName          string `gorm:"column:last_name;type:varchar(100);not null"`
	Specialization    string `gorm:"column:specialization;type:varchar(150);not null"`
	Phone             string `gorm:"column:phone;type:varchar(20);not null"`
	Email             string `gorm:"column:email;type:varchar(255);not null"`
	YearsOfExperience int    `gorm:"column:years_of_experience;not null"`
}

// Doctors are global records: no owner, visible and editable by any
// authenticated account. Two doctors may share a name or email.
func (Doctor) TableName() string {
	return "clinical.doctors"
}

func (d *Doctor) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

func ValidExperience(years int) bool {
	return years >= 0 && years <= MaxYearsOfExperience
}

type CreateDoctorCommand struct {
	FirstName         string
	LastName          string
	Specialization    string
	Phone             string
	Email             string
	YearsOfExperience int
}

type UpdateDoctorCommand struct {
	FirstName         *string
	LastName          *string
	Specialization    *string
	Phone             *string
	Email             *string
	YearsOfExperience *int
}

type ListDoctorsQuery struct {
	Page     int
	PageSize int
}

type PagedDoctors struct {
	Doctors    []*Doctor
	TotalCount int64
}
