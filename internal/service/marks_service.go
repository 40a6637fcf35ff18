package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/institute-admissions-api/internal/dto"
	"github.com/noah-isme/institute-admissions-api/internal/models"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
)

type testMarksStore interface {
	FindTest(ctx context.Context, tenantID, testID string) (*models.AcademicTest, error)
	UpsertMarks(ctx context.Context, tenantID, testID string, marks []models.TestMark) error
	ListMarks(ctx context.Context, tenantID, testID string) ([]models.TestMark, error)
}

// MarksService records test scores and derives their percentage and grade.
type MarksService struct {
	store     testMarksStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewMarksService constructs MarksService.
func NewMarksService(store testMarksStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *MarksService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarksService{store: store, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// Enter upserts the scores of a test and drops the tenant's cached reports.
func (s *MarksService) Enter(ctx context.Context, tenant models.TenantContext, testID string, req dto.EnterMarksRequest) (*dto.TestMarksResponse, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid marks payload")
	}
	test, err := s.store.FindTest(ctx, tenant.TenantID, testID)
	if err != nil {
		return nil, loadError(err, "test not found", "failed to load test")
	}
	if test.TotalMarks <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "test has no total marks")
	}

	enteredAt := s.now().UTC()
	seen := make(map[string]struct{}, len(req.Marks))
	marks := make([]models.TestMark, 0, len(req.Marks))
	for _, entry := range req.Marks {
		studentID := strings.TrimSpace(entry.StudentID)
		if studentID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
		}
		if _, dup := seen[studentID]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate marks for student %s", studentID))
		}
		seen[studentID] = struct{}{}
		if entry.MarksObtained > test.TotalMarks {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("marks for student %s exceed total marks", studentID))
		}
		percentage := entry.MarksObtained / test.TotalMarks * 100
		marks = append(marks, models.TestMark{
			StudentID:     studentID,
			MarksObtained: entry.MarksObtained,
			Percentage:    percentage,
			Grade:         LetterGrade(percentage),
			Passed:        entry.MarksObtained >= test.PassingMarks,
			Remarks:       strings.TrimSpace(entry.Remarks),
			EnteredBy:     tenant.UserID,
			EnteredAt:     enteredAt,
		})
	}

	if err := s.store.UpsertMarks(ctx, tenant.TenantID, test.ID, marks); err != nil {
		return nil, loadError(err, "student not found", "failed to save marks")
	}
	if err := s.cache.InvalidatePattern(ctx, reportCachePrefix(tenant.TenantID)+"*"); err != nil {
		s.logger.Warn("report cache not invalidated", zap.String(logTenant, tenant.TenantID), zap.Error(err))
	}
	s.logger.Info("test marks entered",
		zap.String(logTenant, tenant.TenantID),
		zap.String("test_id", test.ID),
		zap.Int("count", len(marks)),
	)
	return s.sheet(ctx, tenant, test)
}

// List returns the marks sheet of a test with its statistics.
func (s *MarksService) List(ctx context.Context, tenant models.TenantContext, testID string) (*dto.TestMarksResponse, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	test, err := s.store.FindTest(ctx, tenant.TenantID, testID)
	if err != nil {
		return nil, loadError(err, "test not found", "failed to load test")
	}
	return s.sheet(ctx, tenant, test)
}

func (s *MarksService) sheet(ctx context.Context, tenant models.TenantContext, test *models.AcademicTest) (*dto.TestMarksResponse, error) {
	marks, err := s.store.ListMarks(ctx, tenant.TenantID, test.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load marks")
	}
	return &dto.TestMarksResponse{Test: *test, Marks: marks, Statistics: MarkStatistics(marks)}, nil
}

// LetterGrade maps a percentage onto the A+ to F scale.
func LetterGrade(percentage float64) string {
	switch {
	case percentage >= 90:
		return "A+"
	case percentage >= 80:
		return "A"
	case percentage >= 70:
		return "B+"
	case percentage >= 60:
		return "B"
	case percentage >= 50:
		return "C"
	case percentage >= 40:
		return "D"
	default:
		return "F"
	}
}

// MarkStatistics summarises a marks sheet. Averages are formatted to two decimals.
func MarkStatistics(marks []models.TestMark) models.TestMarkStatistics {
	stats := models.TestMarkStatistics{TotalStudents: len(marks), AvgMarks: "0.00", PassPercentage: "0.00"}
	if len(marks) == 0 {
		return stats
	}
	var sum float64
	for i, mark := range marks {
		sum += mark.MarksObtained
		if i == 0 || mark.MarksObtained > stats.HighestMarks {
			stats.HighestMarks = mark.MarksObtained
		}
		if mark.Passed {
			stats.PassedStudents++
		}
	}
	stats.FailedStudents = stats.TotalStudents - stats.PassedStudents
	stats.AvgMarks = fmt.Sprintf("%.2f", sum/float64(len(marks)))
	stats.PassPercentage = fmt.Sprintf("%.2f", float64(stats.PassedStudents)/float64(len(marks))*100)
	return stats
}
