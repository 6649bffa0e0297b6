package v1

import (
	"time"

	"github.com/google/uuid"

	"carelink-api/internal/domain/doctor"
	"carelink-api/internal/domain/mapping"
	"carelink-api/internal/domain/patient"
)

const dateLayout = "2006-01-02"

type UserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type PatientResponse struct {
	ID             uuid.UUID `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	DateOfBirth    string    `json:"date_of_birth"`
	Gender         string    `json:"gender"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	MedicalHistory string    `json:"medical_history"`
	CreatedBy      uuid.UUID `json:"created_by"`
	CreatedByName  string    `json:"created_by_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func newPatientResponse(p *patient.Patient) PatientResponse {
	resp := PatientResponse{
		ID:             p.ID,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		DateOfBirth:    p.DateOfBirth.Format(dateLayout),
		Gender:         string(p.Gender),
		Phone:          p.Phone,
		Address:        p.Address,
		MedicalHistory: p.MedicalHistory,
		CreatedBy:      p.CreatedBy,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.Owner != nil {
		resp.CreatedByName = p.Owner.Name
	}
	return resp
}

func newPatientResponses(patients []*patient.Patient) []PatientResponse {
	out := make([]PatientResponse, 0, len(patients))
	for _, p := range patients {
		out = append(out, newPatientResponse(p))
	}
	return out
}

type DoctorResponse struct {
	ID                uuid.UUID `json:"id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Specialization    string    `json:"specialization"`
	Phone             string    `json:"phone"`
	Email             string    `json:"email"`
	YearsOfExperience int       `json:"years_of_experience"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func newDoctorResponse(d *doctor.Doctor) DoctorResponse {
	return DoctorResponse{
		ID:                d.ID,
		FirstName:         d.FirstName,
		LastName:          d.LastName,
		Specialization:    d.Specialization,
		Phone:             d.Phone,
		Email:             d.Email,
		YearsOfExperience: d.YearsOfExperience,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func newDoctorResponses(doctors []*doctor.Doctor) []DoctorResponse {
	out := make([]DoctorResponse, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, newDoctorResponse(d))
	}
	return out
}

// MappingResponse carries the assignment plus denormalized names and the
// full nested records. The nesting is redundant on the by-patient endpoint
// (the patient also appears at the top level) but is preserved as the
// established response shape.
type MappingResponse struct {
	ID             uuid.UUID        `json:"id"`
	Patient        uuid.UUID        `json:"patient"`
	Doctor         uuid.UUID        `json:"doctor"`
	PatientName    string           `json:"patient_name"`
	DoctorName     string           `json:"doctor_name"`
	PatientDetails *PatientResponse `json:"patient_details,omitempty"`
	DoctorDetails  *DoctorResponse  `json:"doctor_details,omitempty"`
	Notes          string           `json:"notes"`
	AssignedDate   string           `json:"assigned_date"`
	CreatedAt      time.Time        `json:"created_at"`
}

func newMappingResponse(m *mapping.Mapping) MappingResponse {
	resp := MappingResponse{
		ID:           m.ID,
		Patient:      m.PatientID,
		Doctor:       m.DoctorID,
		Notes:        m.Notes,
		AssignedDate: m.AssignedDate.Format(dateLayout),
		CreatedAt:    m.CreatedAt,
	}
	if m.Patient != nil {
		resp.PatientName = m.Patient.FullName()
		details := newPatientResponse(m.Patient)
		resp.PatientDetails = &details
	}
	if m.Doctor != nil {
		resp.DoctorName = m.Doctor.FullName()
		details := newDoctorResponse(m.Doctor)
		resp.DoctorDetails = &details
	}
	return resp
}

func newMappingResponses(mappings []*mapping.Mapping) []MappingResponse {
	out := make([]MappingResponse, 0, len(mappings))
	for _, m := range mappings {
		out = append(out, newMappingResponse(m))
	}
	return out
}
