package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/institute-admissions-api/internal/models"
	"github.com/noah-isme/institute-admissions-api/pkg/database"
)

// AttendanceRepository is the persistence gateway for attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// LoadMarks returns every mark of a session.
func (r *AttendanceRepository) LoadMarks(ctx context.Context, tenantID string, key models.SessionKey) ([]models.AttendanceMark, error) {
	const query = `SELECT student_id, scope_id, to_char(session_date, 'YYYY-MM-DD') AS session_date, status, remarks,
        COALESCE(marked_by, '') AS marked_by, updated_at
        FROM attendance_marks WHERE tenant_id = $1 AND scope_id = $2 AND session_date = $3`
	marks := make([]models.AttendanceMark, 0)
	if err := r.db.SelectContext(ctx, &marks, query, tenantID, key.ScopeID, key.Date); err != nil {
		return nil, fmt.Errorf("load attendance marks: %w", err)
	}
	return marks, nil
}

// SaveMarks upserts marks of one session in a single transaction.
func (r *AttendanceRepository) SaveMarks(ctx context.Context, tenantID string, key models.SessionKey, marks []models.AttendanceMark) error {
	if len(marks) == 0 {
		return nil
	}
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `INSERT INTO attendance_marks (tenant_id, scope_id, session_date, student_id, status, remarks, marked_by, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
            ON CONFLICT (tenant_id, scope_id, session_date, student_id)
            DO UPDATE SET status = EXCLUDED.status, remarks = EXCLUDED.remarks, marked_by = EXCLUDED.marked_by, updated_at = EXCLUDED.updated_at`
		stmt, err := tx.PreparexContext(ctx, query)
		if err != nil {
			return fmt.Errorf("prepare attendance upsert: %w", err)
		}
		defer stmt.Close() //nolint:errcheck

		for _, mark := range marks {
			updatedAt := mark.UpdatedAt
			if updatedAt.IsZero() {
				updatedAt = time.Now().UTC()
			}
			if _, err := stmt.ExecContext(ctx, tenantID, key.ScopeID, key.Date, mark.StudentID, mark.Status, mark.Remarks, mark.MarkedBy, updatedAt); err != nil {
				return fmt.Errorf("upsert attendance mark %s: %w", mark.StudentID, err)
			}
		}
		return nil
	})
}

// DeleteMark removes one mark and reports whether it existed.
func (r *AttendanceRepository) DeleteMark(ctx context.Context, tenantID string, key models.SessionKey, studentID string) (bool, error) {
	const query = `DELETE FROM attendance_marks WHERE tenant_id = $1 AND scope_id = $2 AND session_date = $3 AND student_id = $4`
	res, err := r.db.ExecContext(ctx, query, tenantID, key.ScopeID, key.Date, studentID)
	if err != nil {
		return false, fmt.Errorf("delete attendance mark: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete attendance mark: %w", err)
	}
	return affected > 0, nil
}
