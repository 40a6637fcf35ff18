package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/institute-admissions-api/internal/models"
	"github.com/noah-isme/institute-admissions-api/pkg/database"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
)

// StudentRepository persists students, including conversions from registrations.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// CreateFromEnrollment converts a registration into a student in one transaction.
// The registration flag is flipped with a compare-and-set so a registration
// yields at most one student; losing the race returns ErrAlreadyConverted.
func (r *StudentRepository) CreateFromEnrollment(ctx context.Context, req models.EnrollmentRequest) (string, error) {
	studentID := uuid.NewString()
	now := time.Now().UTC()

	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const claim = `UPDATE exam_registrations
            SET converted_to_student = true, enrollment_status = $3, student_id = $4, updated_at = $5
            WHERE tenant_id = $1 AND id = $2 AND converted_to_student = false`
		res, err := tx.ExecContext(ctx, claim, req.TenantID, req.RegistrationID, models.EnrollmentStatusConverted, studentID, now)
		if err != nil {
			return fmt.Errorf("claim registration: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("claim registration: %w", err)
		}
		if affected == 0 {
			return appErrors.Clone(appErrors.ErrAlreadyConverted, "")
		}

		var batchName string
		if err := tx.GetContext(ctx, &batchName, `SELECT name FROM batches WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, req.TenantID, req.BatchID); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "batch not found")
			}
			return fmt.Errorf("lock batch: %w", err)
		}

		const insert = `INSERT INTO students (id, tenant_id, name, email, phone, date_of_birth, gender, father_name, mother_name,
            guardian_phone, current_class, school, address, course, batch, batch_id, total_fee, paid_amount, discount_applied,
            scholarship_exam_id, registration_id, status, admission_date, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, 0, $18, $19, $20, 'active', $21, $21)`
		if _, err := tx.ExecContext(ctx, insert,
			studentID, req.TenantID, req.StudentName, req.Email, req.Phone, req.DateOfBirth, req.Gender, req.FatherName, req.MotherName,
			req.GuardianPhone, req.CurrentClass, req.School, req.Address, req.Course, batchName, req.BatchID, req.FeeAmount,
			req.DiscountApplied, req.ScholarshipExamID, req.RegistrationID, now,
		); err != nil {
			return fmt.Errorf("insert student: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE batches SET enrolled_count = enrolled_count + 1 WHERE tenant_id = $1 AND id = $2`, req.TenantID, req.BatchID); err != nil {
			return fmt.Errorf("increment batch enrollment: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return studentID, nil
}

// ListRoster returns the active students of a batch ordered by roll number.
func (r *StudentRepository) ListRoster(ctx context.Context, tenantID, batchID string) ([]models.RosterEntry, error) {
	const query = `SELECT id, name, email, roll_number FROM students
        WHERE tenant_id = $1 AND batch_id = $2 AND status = 'active' ORDER BY roll_number ASC, name ASC`
	roster := make([]models.RosterEntry, 0)
	if err := r.db.SelectContext(ctx, &roster, query, tenantID, batchID); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return roster, nil
}

// ExistsByEmail reports whether the tenant already has a student with the email.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, tenantID, email string) (bool, error) {
	const query = `SELECT 1 FROM students WHERE tenant_id = $1 AND LOWER(email) = LOWER($2) LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, tenantID, email); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student email: %w", err)
	}
	return true, nil
}

// CountByBatch returns how many students carry the batch label.
func (r *StudentRepository) CountByBatch(ctx context.Context, tenantID, batch string) (int, error) {
	const query = `SELECT COUNT(*) FROM students WHERE tenant_id = $1 AND batch = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, tenantID, batch); err != nil {
		return 0, fmt.Errorf("count batch students: %w", err)
	}
	return count, nil
}

// Create inserts a student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	if student.Status == "" {
		student.Status = "active"
	}
	const query = `INSERT INTO students (id, tenant_id, name, email, phone, gender, course, batch, batch_id, address,
        roll_number, total_fee, paid_amount, password_hash, status, admission_date, created_at)
        VALUES (:id, :tenant_id, :name, :email, :phone, :gender, :course, :batch, :batch_id, :address,
        :roll_number, :total_fee, :paid_amount, :password_hash, :status, :admission_date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}
