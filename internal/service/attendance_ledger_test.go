package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/institute-admissions-api/internal/models"
)

var ledgerKey = models.SessionKey{ScopeID: "test-1", Date: "2024-03-01"}

func TestLedgerDefaultsToAbsent(t *testing.T) {
	ledger := NewAttendanceLedger()
	mark := ledger.GetStatus("s1", ledgerKey)
	assert.Equal(t, models.AttendanceStatusAbsent, mark.Status)
	assert.Empty(t, mark.Remarks)
}

func TestLedgerSetStatusOverwrites(t *testing.T) {
	ledger := NewAttendanceLedger()
	require.NoError(t, ledger.SetStatus("s1", ledgerKey, models.AttendanceStatusLate, "bus"))
	mark := ledger.GetStatus("s1", ledgerKey)
	assert.Equal(t, models.AttendanceStatusLate, mark.Status)
	assert.Equal(t, "bus", mark.Remarks)

	require.NoError(t, ledger.SetStatus("s1", ledgerKey, models.AttendanceStatusPresent, ""))
	mark = ledger.GetStatus("s1", ledgerKey)
	assert.Equal(t, models.AttendanceStatusPresent, mark.Status)
	assert.Empty(t, mark.Remarks)
}

func TestLedgerSessionsAreIsolated(t *testing.T) {
	ledger := NewAttendanceLedger()
	other := models.SessionKey{ScopeID: "test-1", Date: "2024-03-02"}
	require.NoError(t, ledger.SetStatus("s1", ledgerKey, models.AttendanceStatusPresent, ""))
	assert.Equal(t, models.AttendanceStatusAbsent, ledger.GetStatus("s1", other).Status)
}

func TestLedgerBulkPresentGivesFullAttendance(t *testing.T) {
	ledger := NewAttendanceLedger()
	ids := []string{"a", "b", "c", "d"}
	require.NoError(t, ledger.BulkSet(ids, ledgerKey, models.AttendanceStatusPresent))

	summary := ledger.Summary(ledgerKey, ids)
	assert.Equal(t, len(ids), summary.Present)
	assert.Equal(t, 100, summary.PresentPercentage)
}

func TestLedgerBulkThenIndividualScenario(t *testing.T) {
	ledger := NewAttendanceLedger()
	roster := []string{"A", "B", "C"}
	require.NoError(t, ledger.BulkSet(roster, ledgerKey, models.AttendanceStatusAbsent))
	require.NoError(t, ledger.SetStatus("A", ledgerKey, models.AttendanceStatusPresent, "arrived late"))

	assert.Equal(t, models.AttendanceSummary{Total: 3, Present: 1, Absent: 2, Late: 0, PresentPercentage: 33}, ledger.Summary(ledgerKey, roster))
	mark := ledger.GetStatus("A", ledgerKey)
	assert.Equal(t, models.AttendanceStatusPresent, mark.Status)
	assert.Equal(t, "arrived late", mark.Remarks)
}

func TestLedgerBulkPreservesRemarks(t *testing.T) {
	ledger := NewAttendanceLedger()
	require.NoError(t, ledger.SetStatus("A", ledgerKey, models.AttendanceStatusLate, "medical"))
	require.NoError(t, ledger.BulkSet([]string{"A", "B"}, ledgerKey, models.AttendanceStatusPresent))

	assert.Equal(t, "medical", ledger.GetStatus("A", ledgerKey).Remarks)
	assert.Equal(t, models.AttendanceStatusPresent, ledger.GetStatus("A", ledgerKey).Status)
	assert.Empty(t, ledger.GetStatus("B", ledgerKey).Remarks)
}

func TestLedgerBulkIsAllOrNothing(t *testing.T) {
	ledger := NewAttendanceLedger()
	require.NoError(t, ledger.SetStatus("A", ledgerKey, models.AttendanceStatusLate, ""))

	assert.Error(t, ledger.BulkSet([]string{"A", ""}, ledgerKey, models.AttendanceStatusPresent))
	assert.Error(t, ledger.BulkSet([]string{"A"}, ledgerKey, "excused"))
	assert.Equal(t, models.AttendanceStatusLate, ledger.GetStatus("A", ledgerKey).Status)
}

func TestLedgerSummaryEmptyRoster(t *testing.T) {
	ledger := NewAttendanceLedger()
	assert.Equal(t, models.AttendanceSummary{}, ledger.Summary(ledgerKey, nil))
}

func TestLedgerSummaryIgnoresMarksOffRoster(t *testing.T) {
	ledger := NewAttendanceLedger()
	require.NoError(t, ledger.SetStatus("outsider", ledgerKey, models.AttendanceStatusPresent, ""))
	require.NoError(t, ledger.SetStatus("A", ledgerKey, models.AttendanceStatusLate, ""))

	summary := ledger.Summary(ledgerKey, []string{"A", "B"})
	assert.Equal(t, models.AttendanceSummary{Total: 2, Present: 0, Absent: 1, Late: 1, PresentPercentage: 0}, summary)
}

func TestLedgerClearAndChanges(t *testing.T) {
	ledger := NewAttendanceLedger()
	ledger.Load([]models.AttendanceMark{
		{StudentID: "A", ScopeID: ledgerKey.ScopeID, Date: ledgerKey.Date, Status: models.AttendanceStatusPresent},
		{StudentID: "B", ScopeID: ledgerKey.ScopeID, Date: ledgerKey.Date, Status: models.AttendanceStatusLate},
	})
	assert.Empty(t, ledger.Changes(ledgerKey))
	assert.Len(t, ledger.Marks(ledgerKey), 2)

	require.NoError(t, ledger.SetStatus("C", ledgerKey, models.AttendanceStatusPresent, ""))
	changes := ledger.Changes(ledgerKey)
	require.Len(t, changes, 1)
	assert.Equal(t, "C", changes[0].StudentID)

	assert.True(t, ledger.Clear("A", ledgerKey))
	assert.False(t, ledger.Clear("A", ledgerKey))
	assert.Equal(t, models.AttendanceStatusAbsent, ledger.GetStatus("A", ledgerKey).Status)
}

func TestLedgerConcurrentWritesAreLinearised(t *testing.T) {
	ledger := NewAttendanceLedger()
	roster := []string{"a", "b", "c", "d", "e"}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = ledger.BulkSet(roster, ledgerKey, models.AttendanceStatusPresent)
		}()
		go func(i int) {
			defer wg.Done()
			_ = ledger.SetStatus(roster[i%len(roster)], ledgerKey, models.AttendanceStatusLate, "x")
		}(i)
	}
	wg.Wait()

	summary := ledger.Summary(ledgerKey, roster)
	assert.Equal(t, len(roster), summary.Present+summary.Late)
	assert.Len(t, ledger.Marks(ledgerKey), len(roster))
}
