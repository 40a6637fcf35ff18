package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/institute-admissions-api/internal/models"
)

const batchColumns = `id, tenant_id, name, course, fee, schedule, start_date, duration, capacity, enrolled_count`

// BatchRepository reads tenant batches.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository constructs the repository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// ListByTenant returns all batches of a tenant.
func (r *BatchRepository) ListByTenant(ctx context.Context, tenantID string) ([]models.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE tenant_id = $1 ORDER BY course ASC, name ASC`
	batches := make([]models.Batch, 0)
	if err := r.db.SelectContext(ctx, &batches, query, tenantID); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

// FindByID returns a batch or sql.ErrNoRows.
func (r *BatchRepository) FindByID(ctx context.Context, tenantID, id string) (*models.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE tenant_id = $1 AND id = $2`
	var batch models.Batch
	if err := r.db.GetContext(ctx, &batch, query, tenantID, id); err != nil {
		return nil, err
	}
	return &batch, nil
}
