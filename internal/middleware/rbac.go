package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/institute-admissions-api/internal/models"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
	"github.com/noah-isme/institute-admissions-api/pkg/response"
)

// RequireRoles lets only the listed roles through. Super admins always pass.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles)+1)
	allowed[models.RoleSuperAdmin] = struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		tenant, ok := TenantFrom(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		if _, ok := allowed[tenant.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "role not permitted for this action"))
			return
		}
		c.Next()
	}
}
