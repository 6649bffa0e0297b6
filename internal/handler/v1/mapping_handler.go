package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"carelink-api/internal/domain/mapping"
	"carelink-api/internal/service"
	"carelink-api/pkg/metrics"
)

type MappingHandler struct {
	svc     *service.MappingService
	metrics *metrics.Collector
	log     *zap.Logger
}

func NewMappingHandler(svc *service.MappingService, collector *metrics.Collector, log *zap.Logger) *MappingHandler {
	return &MappingHandler{svc: svc, metrics: collector, log: log}
}

type createMappingRequest struct {
	Patient string `json:"patient"`
	Doctor  string `json:"doctor"`
	Notes   string `json:"notes"`
}

type updateMappingRequest struct {
	Notes *string `json:"notes"`
}

func (h *MappingHandler) Create(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	var req createMappingRequest
	if !bindJSON(c, &req) {
		return
	}

	patientID, err := uuid.Parse(req.Patient)
	if err != nil {
		c.JSON(http.StatusBadRequest, map[string][]string{
			"patient": {"A valid patient id is required."},
		})
		return
	}
	doctorID, err := uuid.Parse(req.Doctor)
	if err != nil {
		c.JSON(http.StatusBadRequest, map[string][]string{
			"doctor": {"A valid doctor id is required."},
		})
		return
	}

	m, err := h.svc.CreateMapping(c.Request.Context(), &mapping.CreateMappingCommand{
		PatientID: patientID,
		DoctorID:  doctorID,
		Notes:     req.Notes,
	}, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.metrics.MappingsCreatedTotal.Inc()

	c.JSON(http.StatusCreated, newMappingResponse(m))
}

func (h *MappingHandler) Get(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	m, err := h.svc.GetMapping(c.Request.Context(), id, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newMappingResponse(m))
}

// Update changes the mapping notes. Patient, doctor, and assigned date are
// immutable once the assignment exists.
func (h *MappingHandler) Update(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateMappingRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Notes == nil {
		c.JSON(http.StatusBadRequest, map[string][]string{
			"notes": {"This field is required."},
		})
		return
	}

	m, err := h.svc.UpdateNotes(c.Request.Context(), id, *req.Notes, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newMappingResponse(m))
}

func (h *MappingHandler) Delete(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteMapping(c.Request.Context(), id, caller); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *MappingHandler) List(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	page, pageSize := pageQuery(c)
	paged, err := h.svc.ListMappings(c.Request.Context(), &mapping.ListMappingsQuery{
		Page:     page,
		PageSize: pageSize,
	}, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondPage(c, paged.TotalCount, page, pageSize, newMappingResponses(paged.Mappings))
}

// ByPatient returns one of the caller's patients together with every doctor
// assignment it has.
func (h *MappingHandler) ByPatient(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	patientID, ok := parseUUID(c, "patient_id")
	if !ok {
		return
	}

	p, mappings, err := h.svc.MappingsByPatient(c.Request.Context(), patientID, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"patient": newPatientResponse(p),
		"doctors": newMappingResponses(mappings),
	})
}
