package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/institute-admissions-api/internal/dto"
	"github.com/noah-isme/institute-admissions-api/internal/models"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
)

type memoryTestMarks struct {
	tests     map[string]models.AcademicTest
	marks     map[string]models.TestMark
	upserts   int
	upsertErr error
}

func newMemoryTestMarks() *memoryTestMarks {
	return &memoryTestMarks{
		tests: map[string]models.AcademicTest{
			"test-1": {ID: "test-1", TenantID: "tenant-1", BatchID: "batch-1", TestName: "Unit 1", Subject: "Math", TotalMarks: 50, PassingMarks: 20},
		},
		marks: map[string]models.TestMark{},
	}
}

func (m *memoryTestMarks) FindTest(ctx context.Context, tenantID, testID string) (*models.AcademicTest, error) {
	test, ok := m.tests[testID]
	if !ok || test.TenantID != tenantID {
		return nil, sql.ErrNoRows
	}
	return &test, nil
}

func (m *memoryTestMarks) UpsertMarks(ctx context.Context, tenantID, testID string, marks []models.TestMark) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts++
	for _, mark := range marks {
		m.marks[mark.StudentID] = mark
	}
	return nil
}

func (m *memoryTestMarks) ListMarks(ctx context.Context, tenantID, testID string) ([]models.TestMark, error) {
	out := make([]models.TestMark, 0, len(m.marks))
	for _, id := range []string{"stu-1", "stu-2", "stu-3"} {
		if mark, ok := m.marks[id]; ok {
			out = append(out, mark)
		}
	}
	return out, nil
}

func TestMarksServiceEnterDerivesGradeAndPass(t *testing.T) {
	store := newMemoryTestMarks()
	svc := NewMarksService(store, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	sheet, err := svc.Enter(context.Background(), adminCtx, "test-1", dto.EnterMarksRequest{Marks: []dto.MarkEntry{
		{StudentID: "stu-1", MarksObtained: 45},
		{StudentID: "stu-2", MarksObtained: 20, Remarks: " borderline "},
		{StudentID: "stu-3", MarksObtained: 12.5},
	}})
	require.NoError(t, err)
	require.Len(t, sheet.Marks, 3)

	assert.Equal(t, 90.0, sheet.Marks[0].Percentage)
	assert.Equal(t, "A+", sheet.Marks[0].Grade)
	assert.True(t, sheet.Marks[0].Passed)
	assert.Equal(t, "user-1", sheet.Marks[0].EnteredBy)

	assert.Equal(t, 40.0, sheet.Marks[1].Percentage)
	assert.Equal(t, "D", sheet.Marks[1].Grade)
	assert.True(t, sheet.Marks[1].Passed)
	assert.Equal(t, "borderline", sheet.Marks[1].Remarks)

	assert.Equal(t, 25.0, sheet.Marks[2].Percentage)
	assert.Equal(t, "F", sheet.Marks[2].Grade)
	assert.False(t, sheet.Marks[2].Passed)

	assert.Equal(t, models.TestMarkStatistics{
		TotalStudents: 3, PassedStudents: 2, FailedStudents: 1,
		AvgMarks: "25.83", HighestMarks: 45, PassPercentage: "66.67",
	}, sheet.Statistics)
	assert.Equal(t, 1, store.upserts)
}

func TestMarksServiceEnterRejectsInvalidSheets(t *testing.T) {
	cases := map[string]struct {
		testID string
		req    dto.EnterMarksRequest
		want   *appErrors.Error
	}{
		"unknown test":   {testID: "no-such-test", req: dto.EnterMarksRequest{Marks: []dto.MarkEntry{{StudentID: "stu-1", MarksObtained: 1}}}, want: appErrors.ErrNotFound},
		"empty sheet":    {testID: "test-1", req: dto.EnterMarksRequest{}, want: appErrors.ErrValidation},
		"negative marks": {testID: "test-1", req: dto.EnterMarksRequest{Marks: []dto.MarkEntry{{StudentID: "stu-1", MarksObtained: -1}}}, want: appErrors.ErrValidation},
		"above total":    {testID: "test-1", req: dto.EnterMarksRequest{Marks: []dto.MarkEntry{{StudentID: "stu-1", MarksObtained: 51}}}, want: appErrors.ErrValidation},
		"duplicate student": {testID: "test-1", req: dto.EnterMarksRequest{Marks: []dto.MarkEntry{
			{StudentID: "stu-1", MarksObtained: 10}, {StudentID: " stu-1", MarksObtained: 12},
		}}, want: appErrors.ErrValidation},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			store := newMemoryTestMarks()
			svc := NewMarksService(store, nil, nil, nil)
			_, err := svc.Enter(context.Background(), adminCtx, tc.testID, tc.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want))
			assert.Zero(t, store.upserts)
		})
	}
}

func TestMarksServiceEnterInvalidatesTenantReports(t *testing.T) {
	cacheRepo := newMemoryCacheRepo()
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	grades := &stubGrades{records: []models.GradedRecord{{StudentID: "stu-1", TestID: "test-1", Subject: "Math", Percentage: 30}}}
	reports := NewReportService(grades, cache, ReportServiceConfig{PassingThreshold: 40}, nil, nil)
	other := models.TenantContext{TenantID: "tenant-2", UserID: "user-2", Role: models.RoleTenantAdmin}

	_, _, err := reports.Reports(context.Background(), adminCtx, dto.ReportFilter{})
	require.NoError(t, err)
	_, _, err = reports.Reports(context.Background(), other, dto.ReportFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, grades.calls)

	svc := NewMarksService(newMemoryTestMarks(), cache, nil, nil)
	_, err = svc.Enter(context.Background(), adminCtx, "test-1", dto.EnterMarksRequest{Marks: []dto.MarkEntry{{StudentID: "stu-1", MarksObtained: 45}}})
	require.NoError(t, err)

	_, hit, err := reports.Reports(context.Background(), adminCtx, dto.ReportFilter{})
	require.NoError(t, err)
	assert.False(t, hit)
	_, hit, err = reports.Reports(context.Background(), other, dto.ReportFilter{})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, grades.calls)
}

func TestMarksServiceEnterPassesStoreErrors(t *testing.T) {
	store := newMemoryTestMarks()
	store.upsertErr = appErrors.Clone(appErrors.ErrNotFound, "one or more students not found")
	svc := NewMarksService(store, nil, nil, nil)

	_, err := svc.Enter(context.Background(), adminCtx, "test-1", dto.EnterMarksRequest{Marks: []dto.MarkEntry{{StudentID: "ghost", MarksObtained: 10}}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	store.upsertErr = errors.New("connection reset")
	_, err = svc.Enter(context.Background(), adminCtx, "test-1", dto.EnterMarksRequest{Marks: []dto.MarkEntry{{StudentID: "stu-1", MarksObtained: 10}}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestMarksServiceListRequiresTenant(t *testing.T) {
	svc := NewMarksService(newMemoryTestMarks(), nil, nil, nil)

	_, err := svc.List(context.Background(), models.TenantContext{}, "test-1")
	require.Error(t, err)

	sheet, err := svc.List(context.Background(), adminCtx, "test-1")
	require.NoError(t, err)
	assert.Empty(t, sheet.Marks)
	assert.Equal(t, "0.00", sheet.Statistics.AvgMarks)
}

func TestLetterGradeBoundaries(t *testing.T) {
	assert.Equal(t, "A+", LetterGrade(90))
	assert.Equal(t, "A", LetterGrade(89.99))
	assert.Equal(t, "B+", LetterGrade(70))
	assert.Equal(t, "B", LetterGrade(60))
	assert.Equal(t, "C", LetterGrade(50))
	assert.Equal(t, "D", LetterGrade(40))
	assert.Equal(t, "F", LetterGrade(39.9))
}
