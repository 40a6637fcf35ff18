package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/institute-admissions-api/internal/models"
)

// ExamRepository reads scholarship exams and stores their computed stats.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// FindByID returns an exam or sql.ErrNoRows.
func (r *ExamRepository) FindByID(ctx context.Context, tenantID, examID string) (*models.ScholarshipExam, error) {
	const query = `SELECT id, tenant_id, exam_name, exam_code, passing_marks FROM scholarship_exams WHERE tenant_id = $1 AND id = $2`
	var exam models.ScholarshipExam
	if err := r.db.GetContext(ctx, &exam, query, tenantID, examID); err != nil {
		return nil, err
	}
	return &exam, nil
}

// Counts tallies registrations of an exam.
func (r *ExamRepository) Counts(ctx context.Context, tenantID, examID string) (models.ExamCounts, error) {
	const query = `SELECT
            COUNT(*) AS total_registrations,
            COUNT(*) FILTER (WHERE has_attended) AS appeared,
            COUNT(*) FILTER (WHERE result = 'pass') AS passed,
            COUNT(*) FILTER (WHERE enrollment_status IN ('enrolled', 'converted')) AS enrolled
        FROM exam_registrations WHERE tenant_id = $1 AND exam_id = $2`
	var counts models.ExamCounts
	if err := r.db.GetContext(ctx, &counts, query, tenantID, examID); err != nil {
		return models.ExamCounts{}, fmt.Errorf("count exam registrations: %w", err)
	}
	return counts, nil
}

// SaveStats writes computed stats back to the exam row.
func (r *ExamRepository) SaveStats(ctx context.Context, tenantID, examID string, stats models.ExamStats) error {
	const query = `UPDATE scholarship_exams SET total_registrations = $3, appeared = $4, passed = $5, enrolled = $6,
        pass_percentage = $7, conversion_rate = $8, stats_refreshed_at = $9
        WHERE tenant_id = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, tenantID, examID, stats.TotalRegistrations, stats.Appeared, stats.Passed,
		stats.Enrolled, stats.PassPercentage, stats.ConversionRate, time.Now().UTC()); err != nil {
		return fmt.Errorf("save exam stats: %w", err)
	}
	return nil
}
