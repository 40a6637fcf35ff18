package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var batchColumnNames = []string{"id", "tenant_id", "name", "course", "fee", "schedule", "start_date", "duration", "capacity", "enrolled_count"}

func TestBatchRepositoryListByTenant(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectQuery(`FROM batches WHERE tenant_id = \$1 ORDER BY course ASC, name ASC`).
		WithArgs("tenant-1").
		WillReturnRows(sqlmock.NewRows(batchColumnNames).
			AddRow("batch-1", "tenant-1", "JEE Morning", "JEE", 20000.0, "Mon-Fri 8am", nil, "12 months", 30, 30))

	batches, err := repo.ListByTenant(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.True(t, batches[0].Full())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectQuery(`FROM batches WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs("tenant-1", "missing").
		WillReturnRows(sqlmock.NewRows(batchColumnNames))

	_, err := repo.FindByID(context.Background(), "tenant-1", "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
