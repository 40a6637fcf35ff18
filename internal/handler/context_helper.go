package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/institute-admissions-api/internal/middleware"
	"github.com/noah-isme/institute-admissions-api/internal/models"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
	"github.com/noah-isme/institute-admissions-api/pkg/response"
)

// tenantFromContext writes a 401 and reports false when no tenant is bound.
func tenantFromContext(c *gin.Context) (models.TenantContext, bool) {
	tenant, ok := middleware.TenantFrom(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "tenant context missing"))
		return models.TenantContext{}, false
	}
	return tenant, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return false
	}
	return true
}
