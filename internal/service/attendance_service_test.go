package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/institute-admissions-api/internal/dto"
	"github.com/noah-isme/institute-admissions-api/internal/models"
	"github.com/noah-isme/institute-admissions-api/pkg/cache"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
)

type memoryMarks struct {
	mu    sync.Mutex
	data  map[models.SessionKey]map[string]models.AttendanceMark
	saves int
}

func newMemoryMarks() *memoryMarks {
	return &memoryMarks{data: map[models.SessionKey]map[string]models.AttendanceMark{}}
}

func (m *memoryMarks) LoadMarks(ctx context.Context, tenantID string, key models.SessionKey) ([]models.AttendanceMark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AttendanceMark, 0, len(m.data[key]))
	for _, mark := range m.data[key] {
		out = append(out, mark)
	}
	return out, nil
}

func (m *memoryMarks) SaveMarks(ctx context.Context, tenantID string, key models.SessionKey, marks []models.AttendanceMark) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.data[key] == nil {
		m.data[key] = map[string]models.AttendanceMark{}
	}
	for _, mark := range marks {
		m.data[key][mark.StudentID] = mark
	}
	return nil
}

func (m *memoryMarks) DeleteMark(ctx context.Context, tenantID string, key models.SessionKey, studentID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key][studentID]; !ok {
		return false, nil
	}
	delete(m.data[key], studentID)
	return true, nil
}

type stubTests map[string]string

func (s stubTests) FindTestBatch(ctx context.Context, tenantID, testID string) (string, error) {
	batch, ok := s[testID]
	if !ok {
		return "", sql.ErrNoRows
	}
	return batch, nil
}

type stubRoster map[string][]models.RosterEntry

func (s stubRoster) ListRoster(ctx context.Context, tenantID, batchID string) ([]models.RosterEntry, error) {
	return s[batchID], nil
}

func newAttendanceFixture(locker SessionLocker) (*AttendanceService, *memoryMarks, *MetricsService) {
	marks := newMemoryMarks()
	roster := stubRoster{"batch-1": {
		{StudentID: "s1", Name: "Asha"},
		{StudentID: "s2", Name: "Ben"},
		{StudentID: "s3", Name: "Chen"},
	}}
	metrics := NewMetricsService()
	svc := NewAttendanceService(marks, stubTests{"test-1": "batch-1"}, roster, locker, metrics, nil, nil)
	return svc, marks, metrics
}

func TestAttendanceSessionSummary(t *testing.T) {
	svc, _, metrics := newAttendanceFixture(NewLocalSessionLocker())
	ctx := context.Background()

	_, err := svc.Mark(ctx, adminCtx, "test-1", dto.MarkAttendanceRequest{StudentID: "s1", Date: "2024-03-01", Status: models.AttendanceStatusPresent, Remarks: " on time "})
	require.NoError(t, err)
	_, err = svc.Mark(ctx, adminCtx, "test-1", dto.MarkAttendanceRequest{StudentID: "s2", Date: "2024-03-01", Status: models.AttendanceStatusLate})
	require.NoError(t, err)

	session, err := svc.Session(ctx, adminCtx, "test-1", dto.SessionQuery{Date: "2024-03-01"})
	require.NoError(t, err)

	assert.Equal(t, models.AttendanceSummary{Total: 3, Present: 1, Absent: 1, Late: 1, PresentPercentage: 33}, session.Summary)
	require.Len(t, session.Students, 3)
	assert.Equal(t, "on time", session.Students[0].Remarks)
	assert.True(t, session.Students[0].Marked)
	assert.False(t, session.Students[2].Marked)
	assert.Equal(t, models.AttendanceStatusAbsent, session.Students[2].Status)
	assert.Equal(t, uint64(2), metrics.Snapshot().AttendanceMarksWritten)
}

func TestAttendanceBulkMarkKeepsRemarks(t *testing.T) {
	svc, marks, _ := newAttendanceFixture(nil)
	ctx := context.Background()
	key := models.SessionKey{ScopeID: "test-1", Date: "2024-03-01"}

	_, err := svc.Mark(ctx, adminCtx, "test-1", dto.MarkAttendanceRequest{StudentID: "s1", Date: key.Date, Status: models.AttendanceStatusLate, Remarks: "bus"})
	require.NoError(t, err)

	written, err := svc.BulkMark(ctx, adminCtx, "test-1", dto.BulkAttendanceRequest{Date: key.Date, Status: models.AttendanceStatusPresent, StudentIDs: []string{"s1", "s2"}})
	require.NoError(t, err)
	assert.Len(t, written, 2)

	assert.Equal(t, "bus", marks.data[key]["s1"].Remarks)
	assert.Equal(t, models.AttendanceStatusPresent, marks.data[key]["s1"].Status)
	assert.Equal(t, "user-1", marks.data[key]["s2"].MarkedBy)
}

func TestAttendanceBulkMarkAllOrNothing(t *testing.T) {
	svc, marks, _ := newAttendanceFixture(nil)
	_, err := svc.BulkMark(context.Background(), adminCtx, "test-1", dto.BulkAttendanceRequest{Date: "2024-03-01", Status: "excused", StudentIDs: []string{"s1"}})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Zero(t, marks.saves)
}

func TestAttendanceClear(t *testing.T) {
	svc, _, _ := newAttendanceFixture(nil)
	ctx := context.Background()
	_, err := svc.Mark(ctx, adminCtx, "test-1", dto.MarkAttendanceRequest{StudentID: "s1", Date: "2024-03-01", Status: models.AttendanceStatusPresent})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, adminCtx, "test-1", "2024-03-01", "s1"))
	err = svc.Clear(ctx, adminCtx, "test-1", "2024-03-01", "s1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	err = svc.Clear(ctx, adminCtx, "test-1", "03/01/2024", "s1")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAttendanceSessionUnknownTest(t *testing.T) {
	svc, _, _ := newAttendanceFixture(nil)
	_, err := svc.Session(context.Background(), adminCtx, "test-404", dto.SessionQuery{Date: "2024-03-01"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestAttendanceWriteLocked(t *testing.T) {
	svc, marks, _ := newAttendanceFixture(busyLocker{err: cache.ErrLockHeld})
	_, err := svc.Mark(context.Background(), adminCtx, "test-1", dto.MarkAttendanceRequest{StudentID: "s1", Date: "2024-03-01", Status: models.AttendanceStatusPresent})
	assert.True(t, errors.Is(err, appErrors.ErrLocked))
	assert.Zero(t, marks.saves)
}

func TestAttendanceConcurrentMarksSerialise(t *testing.T) {
	svc, marks, _ := newAttendanceFixture(NewLocalSessionLocker())
	ids := []string{"s1", "s2", "s3"}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.Mark(context.Background(), adminCtx, "test-1", dto.MarkAttendanceRequest{StudentID: id, Date: "2024-03-01", Status: models.AttendanceStatusPresent})
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	key := models.SessionKey{ScopeID: "test-1", Date: "2024-03-01"}
	assert.Len(t, marks.data[key], 3)
}

func TestAttendanceWritesRequireExistingTest(t *testing.T) {
	svc, marks, metrics := newAttendanceFixture(NewLocalSessionLocker())
	ctx := context.Background()

	_, err := svc.Mark(ctx, adminCtx, "no-such-test", dto.MarkAttendanceRequest{StudentID: "ghost", Date: "2024-03-01", Status: models.AttendanceStatusPresent})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.BulkMark(ctx, adminCtx, "no-such-test", dto.BulkAttendanceRequest{Date: "2024-03-01", Status: models.AttendanceStatusPresent, StudentIDs: []string{"s1"}})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	assert.Zero(t, marks.saves)
	assert.Empty(t, marks.data)
	assert.Zero(t, metrics.Snapshot().AttendanceMarksWritten)
}
