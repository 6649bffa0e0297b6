package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carelink-api/internal/domain/doctor"
	"carelink-api/internal/service"
	"carelink-api/pkg/metrics"
)

type DoctorHandler struct {
	svc     *service.DoctorService
	metrics *metrics.Collector
	log     *zap.Logger
}

func NewDoctorHandler(svc *service.DoctorService, collector *metrics.Collector, log *zap.Logger) *DoctorHandler {
	return &DoctorHandler{svc: svc, metrics: collector, log: log}
}

type createDoctorRequest struct {
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Specialization    string `json:"specialization"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	YearsOfExperience *int   `json:"years_of_experience"`
}

type updateDoctorRequest struct {
	FirstName         *string `json:"first_name"`
	LastName          *string `json:"last_name"`
	Specialization    *string `json:"specialization"`
	Phone             *string `json:"phone"`
	Email             *string `json:"email"`
	YearsOfExperience *int    `json:"years_of_experience"`
}

func (h *DoctorHandler) Create(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	var req createDoctorRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.YearsOfExperience == nil {
		c.JSON(http.StatusBadRequest, map[string][]string{
			"years_of_experience": {"This field is required."},
		})
		return
	}

	d, err := h.svc.CreateDoctor(c.Request.Context(), &doctor.CreateDoctorCommand{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Specialization:    req.Specialization,
		Phone:             req.Phone,
		Email:             req.Email,
		YearsOfExperience: *req.YearsOfExperience,
	}, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.metrics.DoctorsCreatedTotal.Inc()

	c.JSON(http.StatusCreated, newDoctorResponse(d))
}

func (h *DoctorHandler) Get(c *gin.Context) {
	if _, ok := callerFromContext(c); !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	d, err := h.svc.GetDoctor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newDoctorResponse(d))
}

func (h *DoctorHandler) Update(c *gin.Context) {
	h.update(c, true)
}

func (h *DoctorHandler) Patch(c *gin.Context) {
	h.update(c, false)
}

func (h *DoctorHandler) update(c *gin.Context, full bool) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateDoctorRequest
	if !bindJSON(c, &req) {
		return
	}

	if full && (req.FirstName == nil || req.LastName == nil || req.Specialization == nil ||
		req.Phone == nil || req.Email == nil || req.YearsOfExperience == nil) {
		respondError(c, http.StatusBadRequest, "first_name, last_name, specialization, phone, email and years_of_experience are required")
		return
	}

	d, err := h.svc.UpdateDoctor(c.Request.Context(), id, &doctor.UpdateDoctorCommand{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Specialization:    req.Specialization,
		Phone:             req.Phone,
		Email:             req.Email,
		YearsOfExperience: req.YearsOfExperience,
	}, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newDoctorResponse(d))
}

func (h *DoctorHandler) Delete(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteDoctor(c.Request.Context(), id, caller); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *DoctorHandler) List(c *gin.Context) {
	if _, ok := callerFromContext(c); !ok {
		return
	}

	page, pageSize := pageQuery(c)
	paged, err := h.svc.ListDoctors(c.Request.Context(), &doctor.ListDoctorsQuery{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondPage(c, paged.TotalCount, page, pageSize, newDoctorResponses(paged.Doctors))
}
