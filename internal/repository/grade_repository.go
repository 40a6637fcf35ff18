package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/institute-admissions-api/internal/models"
	"github.com/noah-isme/institute-admissions-api/pkg/database"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
)

// GradeRepository reads academic tests and their graded results.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// FindTestBatch returns the batch an academic test belongs to, or sql.ErrNoRows.
func (r *GradeRepository) FindTestBatch(ctx context.Context, tenantID, testID string) (string, error) {
	const query = `SELECT batch_id FROM tests WHERE tenant_id = $1 AND id = $2`
	var batchID string
	if err := r.db.GetContext(ctx, &batchID, query, tenantID, testID); err != nil {
		return "", err
	}
	return batchID, nil
}

// ListGraded returns graded results matching the filter.
func (r *GradeRepository) ListGraded(ctx context.Context, tenantID string, filter models.GradedRecordFilter) ([]models.GradedRecord, error) {
	conditions := []string{"t.tenant_id = $1", "tr.percentage IS NOT NULL"}
	args := []interface{}{tenantID}

	if filter.Course != "" {
		conditions = append(conditions, fmt.Sprintf("b.course = $%d", len(args)+1))
		args = append(args, filter.Course)
	}
	if filter.BatchID != "" {
		conditions = append(conditions, fmt.Sprintf("t.batch_id = $%d", len(args)+1))
		args = append(args, filter.BatchID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("t.test_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("t.test_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	query := `SELECT tr.student_id, s.name AS student_name, t.id AS test_id, t.test_name, t.subject, tr.percentage,
        COALESCE(tr.grade, '') AS grade
        FROM test_results tr
        JOIN tests t ON t.id = tr.test_id
        JOIN students s ON s.id = tr.student_id
        LEFT JOIN batches b ON b.id = t.batch_id
        WHERE ` + strings.Join(conditions, " AND ") + `
        ORDER BY t.test_date ASC, t.id ASC, tr.student_id ASC`

	records := make([]models.GradedRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list graded records: %w", err)
	}
	return records, nil
}

// FindTest returns a test with its marking scheme, or sql.ErrNoRows.
func (r *GradeRepository) FindTest(ctx context.Context, tenantID, testID string) (*models.AcademicTest, error) {
	const query = `SELECT id, tenant_id, batch_id, test_name, subject, total_marks, passing_marks
        FROM tests WHERE tenant_id = $1 AND id = $2`
	var test models.AcademicTest
	if err := r.db.GetContext(ctx, &test, query, tenantID, testID); err != nil {
		return nil, err
	}
	return &test, nil
}

// UpsertMarks writes the results of one test in a single transaction. Every
// student must belong to the tenant or nothing is written.
func (r *GradeRepository) UpsertMarks(ctx context.Context, tenantID, testID string, marks []models.TestMark) error {
	if len(marks) == 0 {
		return nil
	}
	ids := make([]string, len(marks))
	for i, mark := range marks {
		ids[i] = mark.StudentID
	}

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var known int
		const check = `SELECT COUNT(*) FROM students WHERE tenant_id = $1 AND id = ANY($2)`
		if err := tx.GetContext(ctx, &known, check, tenantID, pq.Array(ids)); err != nil {
			return fmt.Errorf("check students: %w", err)
		}
		if known != len(ids) {
			return appErrors.Clone(appErrors.ErrNotFound, "one or more students not found")
		}

		const query = `INSERT INTO test_results (tenant_id, test_id, student_id, marks_obtained, percentage, grade, passed, remarks, entered_by, entered_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10)
            ON CONFLICT (test_id, student_id)
            DO UPDATE SET marks_obtained = EXCLUDED.marks_obtained, percentage = EXCLUDED.percentage, grade = EXCLUDED.grade,
                passed = EXCLUDED.passed, remarks = EXCLUDED.remarks, entered_by = EXCLUDED.entered_by, entered_at = EXCLUDED.entered_at`
		stmt, err := tx.PreparexContext(ctx, query)
		if err != nil {
			return fmt.Errorf("prepare marks upsert: %w", err)
		}
		defer stmt.Close() //nolint:errcheck

		for _, mark := range marks {
			if _, err := stmt.ExecContext(ctx, tenantID, testID, mark.StudentID, mark.MarksObtained, mark.Percentage,
				mark.Grade, mark.Passed, mark.Remarks, mark.EnteredBy, mark.EnteredAt); err != nil {
				return fmt.Errorf("upsert marks %s: %w", mark.StudentID, err)
			}
		}
		return nil
	})
}

// ListMarks returns the results of a test ordered by roll number.
func (r *GradeRepository) ListMarks(ctx context.Context, tenantID, testID string) ([]models.TestMark, error) {
	const query = `SELECT tr.student_id, s.name AS student_name, tr.marks_obtained, COALESCE(tr.percentage, 0) AS percentage,
        COALESCE(tr.grade, '') AS grade, tr.passed, tr.remarks, COALESCE(tr.entered_by, '') AS entered_by, tr.entered_at
        FROM test_results tr
        JOIN students s ON s.id = tr.student_id
        WHERE tr.tenant_id = $1 AND tr.test_id = $2
        ORDER BY s.roll_number ASC, s.name ASC`
	marks := make([]models.TestMark, 0)
	if err := r.db.SelectContext(ctx, &marks, query, tenantID, testID); err != nil {
		return nil, fmt.Errorf("list test marks: %w", err)
	}
	return marks, nil
}
