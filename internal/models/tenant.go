package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the roles an institute user may hold.
type UserRole string

const (
	RoleSuperAdmin  UserRole = "superAdmin"
	RoleTenantAdmin UserRole = "tenantAdmin"
	RoleStaff       UserRole = "staff"
	RoleTeacher     UserRole = "teacher"
	RoleStudent     UserRole = "student"
)

// JWTClaims is the access token payload issued by the tenant auth service.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	TenantID string   `json:"tenant_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	jwt.RegisteredClaims
}

// TenantContext identifies the institute and user a request acts for.
// It is threaded explicitly through every store call.
type TenantContext struct {
	TenantID string
	UserID   string
	Role     UserRole
}

// Valid reports whether the context carries a tenant.
func (t TenantContext) Valid() bool {
	return t.TenantID != ""
}
