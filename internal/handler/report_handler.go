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

type reportService interface {
	Reports(ctx context.Context, tenant models.TenantContext, filter dto.ReportFilter) (*models.ReportAggregate, bool, error)
}

// ReportHandler exposes academic reports.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Reports godoc
// @Summary Academic performance report
// @Tags Reports
// @Produce json
// @Param course query string false "Course"
// @Param batchId query string false "Batch ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param passingThreshold query number false "Passing percentage"
// @Param limit query int false "Top performer count"
// @Success 200 {object} response.Envelope
// @Router /academics/reports [get]
func (h *ReportHandler) Reports(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	var filter dto.ReportFilter
	if !bindQuery(c, &filter) {
		return
	}
	report, hit, err := h.reports.Reports(c.Request.Context(), tenant, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, report, nil, middleware.ExtractMeta(c))
}
