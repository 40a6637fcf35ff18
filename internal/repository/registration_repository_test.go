package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/institute-admissions-api/internal/models"
)

var registrationColumnNames = []string{
	"id", "tenant_id", "exam_id", "registration_number", "student_name", "email", "phone",
	"date_of_birth", "gender", "father_name", "mother_name", "guardian_phone", "current_class", "school", "address",
	"marks_obtained", "percentage", "rank", "result", "reward_eligible",
	"reward_rank_from", "reward_rank_to", "reward_type", "reward_value", "reward_description",
	"enrollment_status", "converted_to_student", "student_id", "has_attended", "exam_date_attended",
	"preferred_exam_date", "registered_at",
}

func registrationRowValues(id string, rewardType interface{}) []driver.Value {
	return []driver.Value{
		id, "tenant-1", "exam-1", "REG-" + id, "Asha Rao", "asha@example.com", "9000000001",
		nil, "Female", "R. Rao", "S. Rao", "9000000002", "10", "City School", "Main Road",
		182.0, 91.0, 3, "pass", rewardType != nil,
		1, 10, rewardType, 25.0, "Top 10",
		"interested", false, nil, true, "2024-03-01",
		"2024-03-01", time.Now(),
	}
}

func TestRegistrationRepositoryFindByIDMapsReward(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery(`FROM exam_registrations r WHERE r.tenant_id = \$1 AND r.exam_id = \$2 AND r.id = \$3`).
		WithArgs("tenant-1", "exam-1", "reg-1").
		WillReturnRows(sqlmock.NewRows(registrationColumnNames).AddRow(registrationRowValues("reg-1", "percentage")...))

	reg, err := repo.FindByID(context.Background(), "tenant-1", "exam-1", "reg-1")
	require.NoError(t, err)
	require.NotNil(t, reg.RewardDetails)
	assert.Equal(t, models.RewardTypePercentage, reg.RewardDetails.RewardType)
	assert.Equal(t, 25.0, reg.RewardDetails.RewardValue)
	assert.Equal(t, models.ExamResultPass, reg.Result)
	assert.True(t, reg.AttendedOn("2024-03-01"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryFindByIDWithoutReward(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery(`FROM exam_registrations r`).
		WillReturnRows(sqlmock.NewRows(registrationColumnNames).AddRow(registrationRowValues("reg-2", nil)...))

	reg, err := repo.FindAnyByID(context.Background(), "tenant-1", "reg-2")
	require.NoError(t, err)
	assert.Nil(t, reg.RewardDetails)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery(`FROM exam_registrations r`).WillReturnRows(sqlmock.NewRows(registrationColumnNames))

	_, err := repo.FindByID(context.Background(), "tenant-1", "exam-1", "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRegistrationRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery(`r.enrollment_status = \$3 AND \(r.student_name ILIKE \$4 .*LIMIT 20 OFFSET 20`).
		WithArgs("tenant-1", "exam-1", models.EnrollmentStatusInterested, "%asha%").
		WillReturnRows(sqlmock.NewRows(registrationColumnNames).AddRow(registrationRowValues("reg-1", nil)...))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM exam_registrations r WHERE`).
		WithArgs("tenant-1", "exam-1", models.EnrollmentStatusInterested, "%asha%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))

	regs, total, err := repo.List(context.Background(), "tenant-1", models.RegistrationFilter{
		ExamID: "exam-1", EnrollmentStatus: models.EnrollmentStatusInterested, Search: " asha ", Page: 2,
	})
	require.NoError(t, err)
	assert.Len(t, regs, 1)
	assert.Equal(t, 21, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryUpdateEnrollmentStatusSkipsConverted(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectExec(`UPDATE exam_registrations SET enrollment_status = \$3.*converted_to_student = false`).
		WithArgs("tenant-1", "reg-1", models.EnrollmentStatusEnrolled).
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err := repo.UpdateEnrollmentStatus(context.Background(), "tenant-1", "reg-1", models.EnrollmentStatusEnrolled)
	require.NoError(t, err)
	assert.False(t, updated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryUpdateAttendance(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	date := "2024-03-01"
	mock.ExpectExec(`UPDATE exam_registrations SET has_attended = \$3, exam_date_attended = \$4`).
		WithArgs("tenant-1", "reg-1", true, "2024-03-01").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE exam_registrations SET has_attended`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateAttendance(context.Background(), "tenant-1", "reg-1", true, &date))
	assert.ErrorIs(t, repo.UpdateAttendance(context.Background(), "tenant-1", "missing", false, nil), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
