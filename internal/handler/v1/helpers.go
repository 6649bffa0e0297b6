package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"carelink-api/internal/domain"
	"carelink-api/internal/domain/doctor"
	"carelink-api/internal/domain/mapping"
	"carelink-api/internal/domain/patient"
	"carelink-api/internal/service"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// ListResponse is the envelope for every list endpoint: a total count,
// absolute-path links to the adjacent pages (null at the edges), and the
// page of results.
type ListResponse struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// respondServiceError maps service and domain errors onto the HTTP error
// taxonomy: 400 validation (field-keyed body), 401 bad credentials,
// 403 ownership violation, 404 not found (or not owned), 500 otherwise.
func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, validErr.Fields)
		return
	}

	switch {
	case errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, doctor.ErrDoctorNotFound),
		errors.Is(err, mapping.ErrMappingNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		respondError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, "access denied")

	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "Invalid credentials")

	default:
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

// bindJSON decodes the request body. Binding-tag failures come back in the
// same field-keyed shape as service validation errors; anything else (a body
// that is not JSON at all) gets a generic message.
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := map[string][]string{}
		for _, fe := range verrs {
			name := strings.ToLower(fe.Field())
			fields[name] = append(fields[name], bindingErrorMessage(fe))
		}
		c.JSON(http.StatusBadRequest, fields)
		return false
	}

	respondError(c, http.StatusBadRequest, "invalid request body")
	return false
}

func bindingErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	default:
		return "This field is invalid."
	}
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid "+param+": must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pageQuery resolves the effective page and page size for a list request.
// Out-of-range sizes fall back to the default here, at the boundary, so the
// pagination links and the repository query always agree on one value.
func pageQuery(c *gin.Context) (page, pageSize int) {
	page = parseQueryInt(c, "page", 1)
	pageSize = parseQueryInt(c, "page_size", defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

func respondPage(c *gin.Context, count int64, page, pageSize int, results any) {
	c.JSON(http.StatusOK, ListResponse{
		Count:    count,
		Next:     pageLink(c, page+1, pageSize, int64(page*pageSize) < count),
		Previous: pageLink(c, page-1, pageSize, page > 1),
		Results:  results,
	})
}

func pageLink(c *gin.Context, page, pageSize int, ok bool) *string {
	if !ok {
		return nil
	}
	link := fmt.Sprintf("%s?page=%d&page_size=%d", c.Request.URL.Path, page, pageSize)
	return &link
}

// callerFromContext retrieves the verified identity stored by the auth
// middleware. Handlers pass it on explicitly; services never read ambient
// request state.
func callerFromContext(c *gin.Context) (domain.Claims, bool) {
	v, ok := c.Get(contextClaimsKey)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return domain.Claims{}, false
	}
	claims, ok := v.(domain.Claims)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return domain.Claims{}, false
	}
	return claims, true
}
