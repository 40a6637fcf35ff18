package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/institute-admissions-api/internal/models"
)

const registrationColumns = `r.id, r.tenant_id, r.exam_id, r.registration_number, r.student_name, r.email, r.phone,
        r.date_of_birth, r.gender, r.father_name, r.mother_name, r.guardian_phone, r.current_class, r.school, r.address,
        r.marks_obtained, r.percentage, r.rank, r.result, r.reward_eligible,
        r.reward_rank_from, r.reward_rank_to, r.reward_type, r.reward_value, r.reward_description,
        r.enrollment_status, r.converted_to_student, r.student_id, r.has_attended, r.exam_date_attended,
        r.preferred_exam_date, r.registered_at`

type registrationRow struct {
	models.Registration
	RewardRankFrom    sql.NullInt64   `db:"reward_rank_from"`
	RewardRankTo      sql.NullInt64   `db:"reward_rank_to"`
	RewardType        sql.NullString  `db:"reward_type"`
	RewardValue       sql.NullFloat64 `db:"reward_value"`
	RewardDescription sql.NullString  `db:"reward_description"`
}

func (row registrationRow) toModel() models.Registration {
	reg := row.Registration
	if row.RewardType.Valid {
		reg.RewardDetails = &models.RewardDetails{
			RankFrom:    int(row.RewardRankFrom.Int64),
			RankTo:      int(row.RewardRankTo.Int64),
			RewardType:  models.RewardType(row.RewardType.String),
			RewardValue: row.RewardValue.Float64,
			Description: row.RewardDescription.String,
		}
	}
	return reg
}

// RegistrationRepository reads and updates scholarship exam registrations.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// FindByID returns a registration of an exam, or sql.ErrNoRows.
func (r *RegistrationRepository) FindByID(ctx context.Context, tenantID, examID, id string) (*models.Registration, error) {
	query := fmt.Sprintf(`SELECT %s FROM exam_registrations r WHERE r.tenant_id = $1 AND r.exam_id = $2 AND r.id = $3`, registrationColumns)
	var row registrationRow
	if err := r.db.GetContext(ctx, &row, query, tenantID, examID, id); err != nil {
		return nil, err
	}
	reg := row.toModel()
	return &reg, nil
}

// FindAnyByID returns a registration of the tenant regardless of exam.
func (r *RegistrationRepository) FindAnyByID(ctx context.Context, tenantID, id string) (*models.Registration, error) {
	query := fmt.Sprintf(`SELECT %s FROM exam_registrations r WHERE r.tenant_id = $1 AND r.id = $2`, registrationColumns)
	var row registrationRow
	if err := r.db.GetContext(ctx, &row, query, tenantID, id); err != nil {
		return nil, err
	}
	reg := row.toModel()
	return &reg, nil
}

// List returns a page of an exam's registrations ordered by rank then marks.
func (r *RegistrationRepository) List(ctx context.Context, tenantID string, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	conditions := []string{"r.tenant_id = $1", "r.exam_id = $2"}
	args := []interface{}{tenantID, filter.ExamID}

	if filter.EnrollmentStatus != "" {
		conditions = append(conditions, fmt.Sprintf("r.enrollment_status = $%d", len(args)+1))
		args = append(args, filter.EnrollmentStatus)
	}
	if filter.Result != "" {
		conditions = append(conditions, fmt.Sprintf("r.result = $%d", len(args)+1))
		args = append(args, filter.Result)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf(
			"(r.student_name ILIKE $%d OR r.email ILIKE $%d OR r.phone ILIKE $%d OR r.registration_number ILIKE $%d)", idx, idx, idx, idx))
		args = append(args, "%"+search+"%")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 20
	}
	offset := (page - 1) * size

	clause := " WHERE " + strings.Join(conditions, " AND ")
	query := fmt.Sprintf(`SELECT %s FROM exam_registrations r%s
        ORDER BY CASE WHEN r.rank > 0 THEN r.rank END ASC NULLS LAST, r.marks_obtained DESC, r.registration_number ASC
        LIMIT %d OFFSET %d`, registrationColumns, clause, size, offset)

	var rows []registrationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM exam_registrations r"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}

	out := make([]models.Registration, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, total, nil
}

// ListByExam returns every registration of an exam.
func (r *RegistrationRepository) ListByExam(ctx context.Context, tenantID, examID string) ([]models.Registration, error) {
	query := fmt.Sprintf(`SELECT %s FROM exam_registrations r WHERE r.tenant_id = $1 AND r.exam_id = $2
        ORDER BY r.registration_number ASC`, registrationColumns)
	var rows []registrationRow
	if err := r.db.SelectContext(ctx, &rows, query, tenantID, examID); err != nil {
		return nil, fmt.Errorf("list exam registrations: %w", err)
	}
	out := make([]models.Registration, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// UpdateEnrollmentStatus changes the status of an unconverted registration.
// It reports false when no unconverted row matched.
func (r *RegistrationRepository) UpdateEnrollmentStatus(ctx context.Context, tenantID, id string, status models.EnrollmentStatus) (bool, error) {
	const query = `UPDATE exam_registrations SET enrollment_status = $3, updated_at = NOW()
        WHERE tenant_id = $1 AND id = $2 AND converted_to_student = false`
	res, err := r.db.ExecContext(ctx, query, tenantID, id, status)
	if err != nil {
		return false, fmt.Errorf("update enrollment status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update enrollment status: %w", err)
	}
	return affected == 1, nil
}

// UpdateAttendance records exam attendance for a registration.
func (r *RegistrationRepository) UpdateAttendance(ctx context.Context, tenantID, id string, hasAttended bool, date *string) error {
	const query = `UPDATE exam_registrations SET has_attended = $3, exam_date_attended = $4, updated_at = NOW()
        WHERE tenant_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, query, tenantID, id, hasAttended, date)
	if err != nil {
		return fmt.Errorf("update exam attendance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update exam attendance: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
