package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/institute-admissions-api/internal/dto"
	"github.com/noah-isme/institute-admissions-api/internal/models"
	"github.com/noah-isme/institute-admissions-api/pkg/response"
)

type attendanceService interface {
	Session(ctx context.Context, tenant models.TenantContext, testID string, query dto.SessionQuery) (*dto.SessionResponse, error)
	Mark(ctx context.Context, tenant models.TenantContext, testID string, req dto.MarkAttendanceRequest) (*models.AttendanceMark, error)
	BulkMark(ctx context.Context, tenant models.TenantContext, testID string, req dto.BulkAttendanceRequest) ([]models.AttendanceMark, error)
	Clear(ctx context.Context, tenant models.TenantContext, testID, date, studentID string) error
}

// AttendanceHandler exposes academic test attendance endpoints.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Session godoc
// @Summary Attendance sheet of a test session
// @Tags Attendance
// @Produce json
// @Param testId path string true "Test ID"
// @Param date query string true "Session date (YYYY-MM-DD)"
// @Param batchId query string false "Batch override"
// @Success 200 {object} response.Envelope
// @Router /academics/tests/{testId}/attendance [get]
func (h *AttendanceHandler) Session(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	var query dto.SessionQuery
	if !bindQuery(c, &query) {
		return
	}
	session, err := h.service.Session(c.Request.Context(), tenant, c.Param("testId"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Mark godoc
// @Summary Mark one student
// @Tags Attendance
// @Accept json
// @Produce json
// @Param testId path string true "Test ID"
// @Param studentId path string true "Student ID"
// @Param payload body dto.MarkAttendanceRequest true "Mark"
// @Success 200 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Router /academics/tests/{testId}/attendance/{studentId} [put]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	var req dto.MarkAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	req.StudentID = c.Param("studentId")
	mark, err := h.service.Mark(c.Request.Context(), tenant, c.Param("testId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mark, nil)
}

// BulkMark godoc
// @Summary Mark many students with one status
// @Tags Attendance
// @Accept json
// @Produce json
// @Param testId path string true "Test ID"
// @Param payload body dto.BulkAttendanceRequest true "Bulk mark"
// @Success 200 {object} response.Envelope
// @Router /academics/tests/{testId}/attendance/bulk [post]
func (h *AttendanceHandler) BulkMark(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	var req dto.BulkAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	marks, err := h.service.BulkMark(c.Request.Context(), tenant, c.Param("testId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marks, nil)
}

// Clear godoc
// @Summary Remove a student's mark
// @Tags Attendance
// @Param testId path string true "Test ID"
// @Param studentId path string true "Student ID"
// @Param date query string true "Session date (YYYY-MM-DD)"
// @Success 204
// @Router /academics/tests/{testId}/attendance/{studentId} [delete]
func (h *AttendanceHandler) Clear(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Clear(c.Request.Context(), tenant, c.Param("testId"), c.Query("date"), c.Param("studentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
