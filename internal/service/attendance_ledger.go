package service

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/noah-isme/institute-admissions-api/internal/models"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
)

type sessionMarks map[string]models.AttendanceMark

// AttendanceLedger holds attendance marks keyed by student and session.
// Writes are linearised; bulk writes apply all marks or none.
type AttendanceLedger struct {
	mu       sync.RWMutex
	sessions map[models.SessionKey]sessionMarks
	dirty    map[models.SessionKey]map[string]struct{}
	now      func() time.Time
}

// NewAttendanceLedger returns an empty ledger.
func NewAttendanceLedger() *AttendanceLedger {
	return &AttendanceLedger{
		sessions: make(map[models.SessionKey]sessionMarks),
		dirty:    make(map[models.SessionKey]map[string]struct{}),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Load seeds the ledger with persisted marks without flagging them as changed.
func (l *AttendanceLedger) Load(marks []models.AttendanceMark) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, mark := range marks {
		key := mark.Key()
		if l.sessions[key] == nil {
			l.sessions[key] = make(sessionMarks)
		}
		l.sessions[key][mark.StudentID] = mark
	}
}

// SetStatus overwrites the mark of one student.
func (l *AttendanceLedger) SetStatus(studentID string, key models.SessionKey, status models.AttendanceStatus, remarks string) error {
	if err := validateMark(studentID, status); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sessions[key] == nil {
		l.sessions[key] = make(sessionMarks)
	}
	l.sessions[key][studentID] = l.newMark(studentID, key, status, remarks)
	l.markDirty(key, studentID)
	return nil
}

// BulkSet gives every listed student the same status, keeping prior remarks.
// Nothing changes when any id or the status is invalid.
func (l *AttendanceLedger) BulkSet(studentIDs []string, key models.SessionKey, status models.AttendanceStatus) error {
	if !status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid attendance status %q", status))
	}
	for _, id := range studentIDs {
		if err := validateMark(id, status); err != nil {
			return err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.sessions[key]
	next := make(sessionMarks, len(current)+len(studentIDs))
	for id, mark := range current {
		next[id] = mark
	}
	for _, id := range studentIDs {
		next[id] = l.newMark(id, key, status, current[id].Remarks)
	}
	l.sessions[key] = next
	for _, id := range studentIDs {
		l.markDirty(key, id)
	}
	return nil
}

// GetStatus returns the mark of a student, defaulting to absent with no remarks.
func (l *AttendanceLedger) GetStatus(studentID string, key models.SessionKey) models.AttendanceMark {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if mark, ok := l.sessions[key][studentID]; ok {
		return mark
	}
	return models.AttendanceMark{StudentID: studentID, ScopeID: key.ScopeID, Date: key.Date, Status: models.AttendanceStatusAbsent}
}

// Summary counts statuses over roster. Unmarked students count as absent.
func (l *AttendanceLedger) Summary(key models.SessionKey, roster []string) models.AttendanceSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	summary := models.AttendanceSummary{Total: len(roster)}
	marks := l.sessions[key]
	for _, id := range roster {
		switch marks[id].Status {
		case models.AttendanceStatusPresent:
			summary.Present++
		case models.AttendanceStatusLate:
			summary.Late++
		default:
			summary.Absent++
		}
	}
	if summary.Total > 0 {
		summary.PresentPercentage = int(math.Round(float64(summary.Present) / float64(summary.Total) * 100))
	}
	return summary
}

// Clear removes the mark of a student and reports whether one existed.
func (l *AttendanceLedger) Clear(studentID string, key models.SessionKey) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	marks := l.sessions[key]
	if _, ok := marks[studentID]; !ok {
		return false
	}
	delete(marks, studentID)
	if set := l.dirty[key]; set != nil {
		delete(set, studentID)
	}
	return true
}

// Marks returns a snapshot of the session's marks.
func (l *AttendanceLedger) Marks(key models.SessionKey) []models.AttendanceMark {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.AttendanceMark, 0, len(l.sessions[key]))
	for _, mark := range l.sessions[key] {
		out = append(out, mark)
	}
	return out
}

// Changes returns the marks written since Load, for persistence.
func (l *AttendanceLedger) Changes(key models.SessionKey) []models.AttendanceMark {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.AttendanceMark, 0, len(l.dirty[key]))
	for id := range l.dirty[key] {
		out = append(out, l.sessions[key][id])
	}
	return out
}

func (l *AttendanceLedger) newMark(studentID string, key models.SessionKey, status models.AttendanceStatus, remarks string) models.AttendanceMark {
	return models.AttendanceMark{
		StudentID: studentID,
		ScopeID:   key.ScopeID,
		Date:      key.Date,
		Status:    status,
		Remarks:   remarks,
		UpdatedAt: l.now(),
	}
}

func (l *AttendanceLedger) markDirty(key models.SessionKey, studentID string) {
	if l.dirty[key] == nil {
		l.dirty[key] = make(map[string]struct{})
	}
	l.dirty[key][studentID] = struct{}{}
}

func validateMark(studentID string, status models.AttendanceStatus) error {
	if studentID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "student id required")
	}
	if !status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid attendance status %q", status))
	}
	return nil
}
