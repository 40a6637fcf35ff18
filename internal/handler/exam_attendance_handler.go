package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/institute-admissions-api/internal/dto"
	"github.com/noah-isme/institute-admissions-api/internal/models"
	"github.com/noah-isme/institute-admissions-api/pkg/response"
)

type examAttendanceService interface {
	UpdateAttendance(ctx context.Context, tenant models.TenantContext, registrationID string, req dto.ExamAttendanceRequest) (*models.Registration, error)
	Roster(ctx context.Context, tenant models.TenantContext, examID string, filter dto.ExamAttendanceFilter) (*dto.ExamRosterResponse, error)
	Export(ctx context.Context, tenant models.TenantContext, examID string, req dto.ExportRequest) (*dto.ExportResponse, error)
	ResolveDownload(token string) (*dto.ExportDownload, io.ReadCloser, error)
	Stats(ctx context.Context, tenant models.TenantContext, examID string) (*models.ExamStats, error)
}

// ExamAttendanceHandler exposes scholarship exam attendance endpoints.
type ExamAttendanceHandler struct {
	service examAttendanceService
}

// NewExamAttendanceHandler constructs ExamAttendanceHandler.
func NewExamAttendanceHandler(svc examAttendanceService) *ExamAttendanceHandler {
	return &ExamAttendanceHandler{service: svc}
}

// Update godoc
// @Summary Record exam attendance of a registrant
// @Tags Scholarship Exams
// @Accept json
// @Produce json
// @Param registrationId path string true "Registration ID"
// @Param payload body dto.ExamAttendanceRequest true "Attendance"
// @Success 200 {object} response.Envelope
// @Router /scholarship-exams/registrations/{registrationId}/attendance [put]
func (h *ExamAttendanceHandler) Update(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	var req dto.ExamAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	reg, err := h.service.UpdateAttendance(c.Request.Context(), tenant, c.Param("registrationId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}

// Roster godoc
// @Summary Exam attendance roster for a date
// @Tags Scholarship Exams
// @Produce json
// @Param examId path string true "Exam ID"
// @Param date query string true "Exam date (YYYY-MM-DD)"
// @Param status query string false "all, present or absent"
// @Param search query string false "Name, email, phone or registration number"
// @Success 200 {object} response.Envelope
// @Router /scholarship-exams/{examId}/attendance [get]
func (h *ExamAttendanceHandler) Roster(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	var filter dto.ExamAttendanceFilter
	if !bindQuery(c, &filter) {
		return
	}
	roster, err := h.service.Roster(c.Request.Context(), tenant, c.Param("examId"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// Export godoc
// @Summary Export the attendance of a date
// @Tags Scholarship Exams
// @Accept json
// @Produce json
// @Param examId path string true "Exam ID"
// @Param payload body dto.ExportRequest true "Export"
// @Success 201 {object} response.Envelope
// @Router /scholarship-exams/{examId}/attendance/export [post]
func (h *ExamAttendanceHandler) Export(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	var req dto.ExportRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.service.Export(c.Request.Context(), tenant, c.Param("examId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download a generated export
// @Tags Scholarship Exams
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *ExamAttendanceHandler) Download(c *gin.Context) {
	download, file, err := h.service.ResolveDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Type", download.ContentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		_ = c.Error(err)
	}
}

// Stats godoc
// @Summary Registration statistics of an exam
// @Tags Scholarship Exams
// @Produce json
// @Param examId path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /scholarship-exams/{examId}/stats [get]
func (h *ExamAttendanceHandler) Stats(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	stats, err := h.service.Stats(c.Request.Context(), tenant, c.Param("examId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
