package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/institute-admissions-api/internal/dto"
	"github.com/noah-isme/institute-admissions-api/internal/models"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
	"github.com/noah-isme/institute-admissions-api/pkg/response"
)

const maxImportUploadBytes = 10 << 20

type studentImportService interface {
	Import(ctx context.Context, tenant models.TenantContext, filename string, r io.Reader) (*dto.StudentImportResult, error)
}

// StudentImportHandler accepts bulk student uploads.
type StudentImportHandler struct {
	service studentImportService
}

// NewStudentImportHandler constructs StudentImportHandler.
func NewStudentImportHandler(svc studentImportService) *StudentImportHandler {
	return &StudentImportHandler{service: svc}
}

// Import godoc
// @Summary Bulk import students from CSV or XLSX
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} response.Envelope
// @Router /students/import [post]
func (h *StudentImportHandler) Import(c *gin.Context) {
	tenant, ok := tenantFromContext(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportUploadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable upload"))
		return
	}
	defer file.Close()

	result, err := h.service.Import(c.Request.Context(), tenant, header.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
