package service

import (
	"database/sql"
	"errors"

	"github.com/noah-isme/institute-admissions-api/internal/models"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
)

func requireTenant(tenant models.TenantContext) error {
	if !tenant.Valid() {
		return appErrors.Clone(appErrors.ErrUnauthorized, "tenant context missing")
	}
	return nil
}

// loadError maps a repository lookup error onto the API taxonomy.
func loadError(err error, notFound, failure string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, failure)
}

const logTenant = "tenant_id"
