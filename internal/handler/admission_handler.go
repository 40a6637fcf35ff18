package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/institute-admissions-api/internal/dto"
	"github.com/noah-isme/institute-admissions-api/internal/middleware"
	"github.com/noah-isme/institute-admissions-api/internal/models"
	"github.com/noah-isme/institute-admissions-api/pkg/response"
)

type admissionService interface {
	ListBatches(ctx context.Context, tenant models.TenantContext) ([]models.Batch, bool, error)
	ListRegistrations(ctx context.Context, tenant models.TenantContext, examID string, filter dto.RegistrationFilter) ([]models.Registration, *models.Pagination, error)
	QuoteFee(ctx context.Context, tenant models.TenantContext, examID, registrationID, batchID string) (*dto.FeeQuoteResponse, error)
	Convert(ctx context.Context, tenant models.TenantContext, examID, registrationID string, req dto.ConvertRegistrationRequest) (*dto.ConversionResponse, error)
	UpdateEnrollmentStatus(ctx context.Context, tenant models.TenantContext, examID, registrationID string, req dto.UpdateEnrollmentStatusRequest) (*models.Registration, error)
}

// AdmissionHandler exposes registration to student conversion endpoints.
type AdmissionHandler struct {
	service admissionService
}

// NewAdmissionHandler constructs AdmissionHandler.
func NewAdmissionHandler(svc admissionService) *AdmissionHandler {
	return &AdmissionHandler{service: svc}
}

// ListBatches godoc
// @Summary List batches
// @Tags Admissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /batches [get]
func (h *AdmissionHandler) ListBatches(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	batches, hit, err := h.service.ListBatches(c.Request.Context(), tenant)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, batches, nil, middleware.ExtractMeta(c))
}

// ListRegistrations godoc
// @Summary List scholarship exam registrations
// @Tags Admissions
// @Produce json
// @Param examId path string true "Exam ID"
// @Param enrollmentStatus query string false "notInterested, interested, enrolled or converted"
// @Param result query string false "pass, fail, absent or pending"
// @Param search query string false "Name, email, phone or registration number"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /scholarship-exams/{examId}/registrations [get]
func (h *AdmissionHandler) ListRegistrations(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	var filter dto.RegistrationFilter
	if !bindQuery(c, &filter) {
		return
	}
	regs, pagination, err := h.service.ListRegistrations(c.Request.Context(), tenant, c.Param("examId"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, regs, pagination)
}

// QuoteFee godoc
// @Summary Price a batch for a registration
// @Tags Admissions
// @Produce json
// @Param examId path string true "Exam ID"
// @Param registrationId path string true "Registration ID"
// @Param batchId query string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /scholarship-exams/{examId}/registrations/{registrationId}/fee-quote [get]
func (h *AdmissionHandler) QuoteFee(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	quote, err := h.service.QuoteFee(c.Request.Context(), tenant, c.Param("examId"), c.Param("registrationId"), c.Query("batchId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, quote, nil)
}

// Convert godoc
// @Summary Convert a registration into a student
// @Tags Admissions
// @Accept json
// @Produce json
// @Param examId path string true "Exam ID"
// @Param registrationId path string true "Registration ID"
// @Param payload body dto.ConvertRegistrationRequest true "Admission form"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /scholarship-exams/{examId}/registrations/{registrationId}/convert [post]
func (h *AdmissionHandler) Convert(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	var req dto.ConvertRegistrationRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.service.Convert(c.Request.Context(), tenant, c.Param("examId"), c.Param("registrationId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateEnrollmentStatus godoc
// @Summary Update the enrollment interest of a registration
// @Tags Admissions
// @Accept json
// @Produce json
// @Param examId path string true "Exam ID"
// @Param registrationId path string true "Registration ID"
// @Param payload body dto.UpdateEnrollmentStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /scholarship-exams/{examId}/registrations/{registrationId}/enrollment-status [patch]
func (h *AdmissionHandler) UpdateEnrollmentStatus(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateEnrollmentStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	reg, err := h.service.UpdateEnrollmentStatus(c.Request.Context(), tenant, c.Param("examId"), c.Param("registrationId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}
