package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/institute-admissions-api/internal/models"
	"github.com/noah-isme/institute-admissions-api/internal/service"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
	"github.com/noah-isme/institute-admissions-api/pkg/logger"
	"github.com/noah-isme/institute-admissions-api/pkg/response"
)

const (
	// ContextUserKey is the gin context key storing JWT claims.
	ContextUserKey = "currentUser"
	// ContextTenantKey is the gin context key storing the models.TenantContext.
	ContextTenantKey = "tenantContext"
)

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT requires a valid bearer token and binds the request to its tenant.
func JWT(auth tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			return
		}

		claims, err := auth.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			return
		}

		tenant := service.TenantFromClaims(claims)
		c.Set(ContextUserKey, claims)
		c.Set(ContextTenantKey, tenant)
		c.Set(logger.TenantKey, tenant.TenantID)
		c.Next()
	}
}

// TenantFrom returns the tenant bound by JWT.
func TenantFrom(c *gin.Context) (models.TenantContext, bool) {
	value, exists := c.Get(ContextTenantKey)
	if !exists {
		return models.TenantContext{}, false
	}
	tenant, ok := value.(models.TenantContext)
	return tenant, ok && tenant.Valid()
}
