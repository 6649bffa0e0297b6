package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carelink-api/internal/domain/patient"
	"carelink-api/internal/service"
	"carelink-api/pkg/metrics"
)

type PatientHandler struct {
	svc     *service.PatientService
	metrics *metrics.Collector
	log     *zap.Logger
}

func NewPatientHandler(svc *service.PatientService, collector *metrics.Collector, log *zap.Logger) *PatientHandler {
	return &PatientHandler{svc: svc, metrics: collector, log: log}
}

type createPatientRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DateOfBirth    string `json:"date_of_birth"`
	Gender         string `json:"gender"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	MedicalHistory string `json:"medical_history"`
}

type updatePatientRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	DateOfBirth    *string `json:"date_of_birth"`
	Gender         *string `json:"gender"`
	Phone          *string `json:"phone"`
	Address        *string `json:"address"`
	MedicalHistory *string `json:"medical_history"`
}

func (h *PatientHandler) Create(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	var req createPatientRequest
	if !bindJSON(c, &req) {
		return
	}

	dob, ok := parseDate(c, req.DateOfBirth)
	if !ok {
		return
	}

	p, err := h.svc.CreatePatient(c.Request.Context(), &patient.CreatePatientCommand{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		DateOfBirth:    dob,
		Gender:         req.Gender,
		Phone:          req.Phone,
		Address:        req.Address,
		MedicalHistory: req.MedicalHistory,
	}, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.metrics.PatientsCreatedTotal.Inc()

	c.JSON(http.StatusCreated, newPatientResponse(p))
}

func (h *PatientHandler) Get(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.svc.GetPatient(c.Request.Context(), id, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPatientResponse(p))
}

// Update handles PUT: every mutable field must be present.
func (h *PatientHandler) Update(c *gin.Context) {
	h.update(c, true)
}

// Patch handles PATCH: absent fields are left untouched.
func (h *PatientHandler) Patch(c *gin.Context) {
	h.update(c, false)
}

func (h *PatientHandler) update(c *gin.Context, full bool) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updatePatientRequest
	if !bindJSON(c, &req) {
		return
	}

	if full && (req.FirstName == nil || req.LastName == nil || req.DateOfBirth == nil ||
		req.Gender == nil || req.Phone == nil) {
		respondError(c, http.StatusBadRequest, "first_name, last_name, date_of_birth, gender and phone are required")
		return
	}

	cmd := &patient.UpdatePatientCommand{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Gender:         req.Gender,
		Phone:          req.Phone,
		Address:        req.Address,
		MedicalHistory: req.MedicalHistory,
	}
	if req.DateOfBirth != nil {
		dob, ok := parseDate(c, *req.DateOfBirth)
		if !ok {
			return
		}
		cmd.DateOfBirth = &dob
	}

	p, err := h.svc.UpdatePatient(c.Request.Context(), id, cmd, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPatientResponse(p))
}

func (h *PatientHandler) Delete(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeletePatient(c.Request.Context(), id, caller); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *PatientHandler) List(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	page, pageSize := pageQuery(c)
	paged, err := h.svc.ListPatients(c.Request.Context(), &patient.ListPatientsQuery{
		Page:     page,
		PageSize: pageSize,
	}, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondPage(c, paged.TotalCount, page, pageSize, newPatientResponses(paged.Patients))
}

// parseDate accepts a calendar date in YYYY-MM-DD form. An empty value
// parses to the zero time so required-ness stays a service concern.
func parseDate(c *gin.Context, raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, map[string][]string{
			"date_of_birth": {"Date has wrong format. Use YYYY-MM-DD."},
		})
		return time.Time{}, false
	}
	return t, true
}
