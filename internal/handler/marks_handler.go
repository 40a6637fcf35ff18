package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/institute-admissions-api/internal/dto"
	"github.com/noah-isme/institute-admissions-api/internal/models"
	"github.com/noah-isme/institute-admissions-api/pkg/response"
)

type marksService interface {
	Enter(ctx context.Context, tenant models.TenantContext, testID string, req dto.EnterMarksRequest) (*dto.TestMarksResponse, error)
	List(ctx context.Context, tenant models.TenantContext, testID string) (*dto.TestMarksResponse, error)
}

// MarksHandler exposes test score endpoints.
type MarksHandler struct {
	service marksService
}

// NewMarksHandler constructs MarksHandler.
func NewMarksHandler(svc marksService) *MarksHandler {
	return &MarksHandler{service: svc}
}

// List godoc
// @Summary Marks sheet of a test
// @Tags Marks
// @Produce json
// @Param testId path string true "Test ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /academics/tests/{testId}/marks [get]
func (h *MarksHandler) List(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	sheet, err := h.service.List(c.Request.Context(), tenant, c.Param("testId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// Enter godoc
// @Summary Enter or correct test marks
// @Tags Marks
// @Accept json
// @Produce json
// @Param testId path string true "Test ID"
// @Param payload body dto.EnterMarksRequest true "Marks"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /academics/tests/{testId}/marks [put]
func (h *MarksHandler) Enter(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	var req dto.EnterMarksRequest
	if !bindJSON(c, &req) {
		return
	}
	sheet, err := h.service.Enter(c.Request.Context(), tenant, c.Param("testId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}
