package models

import (
	"fmt"
	"time"
)

// AttendanceStatus represents the status of an attendance mark.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate:
		return true
	default:
		return false
	}
}

// SessionKey scopes attendance to a test or exam on one date.
type SessionKey struct {
	ScopeID string `json:"scopeId"`
	Date    string `json:"date"`
}

// NewSessionKey validates the date (YYYY-MM-DD) and builds a key.
func NewSessionKey(scopeID, date string) (SessionKey, error) {
	if scopeID == "" {
		return SessionKey{}, fmt.Errorf("session scope required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return SessionKey{}, fmt.Errorf("invalid session date %q, expected YYYY-MM-DD", date)
	}
	return SessionKey{ScopeID: scopeID, Date: date}, nil
}

func (k SessionKey) String() string {
	return k.ScopeID + "|" + k.Date
}

// AttendanceMark is the status of one student in one session.
type AttendanceMark struct {
	StudentID string           `db:"student_id" json:"studentId"`
	ScopeID   string           `db:"scope_id" json:"-"`
	Date      string           `db:"session_date" json:"-"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Remarks   string           `db:"remarks" json:"remarks"`
	MarkedBy  string           `db:"marked_by" json:"markedBy,omitempty"`
	UpdatedAt time.Time        `db:"updated_at" json:"updatedAt"`
}

// Key returns the session the mark belongs to.
func (m AttendanceMark) Key() SessionKey {
	return SessionKey{ScopeID: m.ScopeID, Date: m.Date}
}

// AttendanceSummary counts statuses over a roster.
type AttendanceSummary struct {
	Total             int `json:"total"`
	Present           int `json:"present"`
	Absent            int `json:"absent"`
	Late              int `json:"late"`
	PresentPercentage int `json:"presentPercentage"`
}
