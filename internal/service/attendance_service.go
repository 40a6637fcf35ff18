package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/institute-admissions-api/internal/dto"
	"github.com/noah-isme/institute-admissions-api/internal/models"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
)

type attendanceGateway interface {
	LoadMarks(ctx context.Context, tenantID string, key models.SessionKey) ([]models.AttendanceMark, error)
	SaveMarks(ctx context.Context, tenantID string, key models.SessionKey, marks []models.AttendanceMark) error
	DeleteMark(ctx context.Context, tenantID string, key models.SessionKey, studentID string) (bool, error)
}

type testBatchResolver interface {
	FindTestBatch(ctx context.Context, tenantID, testID string) (string, error)
}

type rosterReader interface {
	ListRoster(ctx context.Context, tenantID, batchID string) ([]models.RosterEntry, error)
}

// AttendanceService records attendance for academic test sessions.
type AttendanceService struct {
	marks     attendanceGateway
	tests     testBatchResolver
	roster    rosterReader
	locker    SessionLocker
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs AttendanceService.
func NewAttendanceService(marks attendanceGateway, tests testBatchResolver, roster rosterReader, locker SessionLocker, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{marks: marks, tests: tests, roster: roster, locker: locker, metrics: metrics, validator: validate, logger: logger}
}

// Session returns the roster of a test session joined with its marks.
func (s *AttendanceService) Session(ctx context.Context, tenant models.TenantContext, testID string, query dto.SessionQuery) (*dto.SessionResponse, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session query")
	}
	key, err := models.NewSessionKey(testID, query.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session")
	}

	batchID := strings.TrimSpace(query.BatchID)
	if batchID == "" {
		batchID, err = s.tests.FindTestBatch(ctx, tenant.TenantID, testID)
		if err != nil {
			return nil, loadError(err, "test not found", "failed to load test")
		}
	}
	roster, err := s.roster.ListRoster(ctx, tenant.TenantID, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	marks, err := s.marks.LoadMarks(ctx, tenant.TenantID, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	ledger := NewAttendanceLedger()
	ledger.Load(marks)
	marked := make(map[string]struct{}, len(marks))
	for _, mark := range marks {
		marked[mark.StudentID] = struct{}{}
	}

	ids := make([]string, 0, len(roster))
	students := make([]dto.SessionStudent, 0, len(roster))
	for _, entry := range roster {
		mark := ledger.GetStatus(entry.StudentID, key)
		_, ok := marked[entry.StudentID]
		students = append(students, dto.SessionStudent{RosterEntry: entry, Status: mark.Status, Remarks: mark.Remarks, Marked: ok})
		ids = append(ids, entry.StudentID)
	}

	return &dto.SessionResponse{TestID: testID, Date: key.Date, Students: students, Summary: ledger.Summary(key, ids)}, nil
}

// Mark sets the status of one student.
func (s *AttendanceService) Mark(ctx context.Context, tenant models.TenantContext, testID string, req dto.MarkAttendanceRequest) (*models.AttendanceMark, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	key, err := models.NewSessionKey(testID, req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session")
	}
	changes, err := s.write(ctx, tenant, key, func(ledger *AttendanceLedger) error {
		return ledger.SetStatus(req.StudentID, key, req.Status, strings.TrimSpace(req.Remarks))
	})
	if err != nil {
		return nil, err
	}
	return &changes[0], nil
}

// BulkMark sets one status for many students, keeping their remarks.
func (s *AttendanceService) BulkMark(ctx context.Context, tenant models.TenantContext, testID string, req dto.BulkAttendanceRequest) ([]models.AttendanceMark, error) {
	if err := requireTenant(tenant); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk attendance payload")
	}
	key, err := models.NewSessionKey(testID, req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session")
	}
	return s.write(ctx, tenant, key, func(ledger *AttendanceLedger) error {
		return ledger.BulkSet(req.StudentIDs, key, req.Status)
	})
}

// Clear removes the mark of one student.
func (s *AttendanceService) Clear(ctx context.Context, tenant models.TenantContext, testID, date, studentID string) error {
	if err := requireTenant(tenant); err != nil {
		return err
	}
	key, err := models.NewSessionKey(testID, date)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session")
	}
	if strings.TrimSpace(studentID) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "student id required")
	}

	release, err := acquireSession(ctx, s.locker, s.metrics, tenant.TenantID, key)
	if err != nil {
		return err
	}
	defer release()

	deleted, err := s.marks.DeleteMark(ctx, tenant.TenantID, key, studentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear attendance")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "attendance mark not found")
	}
	return nil
}

// write applies fn to the persisted session under the session lock and saves what changed.
func (s *AttendanceService) write(ctx context.Context, tenant models.TenantContext, key models.SessionKey, fn func(*AttendanceLedger) error) ([]models.AttendanceMark, error) {
	if _, err := s.tests.FindTestBatch(ctx, tenant.TenantID, key.ScopeID); err != nil {
		return nil, loadError(err, "test not found", "failed to load test")
	}

	release, err := acquireSession(ctx, s.locker, s.metrics, tenant.TenantID, key)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.marks.LoadMarks(ctx, tenant.TenantID, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	ledger := NewAttendanceLedger()
	ledger.Load(existing)
	if err := fn(ledger); err != nil {
		return nil, err
	}

	changes := ledger.Changes(key)
	for i := range changes {
		changes[i].MarkedBy = tenant.UserID
	}
	if err := s.marks.SaveMarks(ctx, tenant.TenantID, key, changes); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}
	s.metrics.RecordMarksWritten(AttendanceScopeTest, len(changes))
	s.logger.Debug("attendance written",
		zap.String(logTenant, tenant.TenantID),
		zap.String("session", key.String()),
		zap.Int("marks", len(changes)),
	)
	return changes, nil
}
