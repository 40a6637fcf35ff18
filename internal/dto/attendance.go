package dto

import "github.com/noah-isme/institute-admissions-api/internal/models"

// MarkAttendanceRequest sets the status of one student in a test session.
type MarkAttendanceRequest struct {
	StudentID string                  `json:"-"`
	Date      string                  `json:"date" validate:"required,datetime=2006-01-02"`
	Status    models.AttendanceStatus `json:"status" validate:"required,oneof=present absent late"`
	Remarks   string                  `json:"remarks" validate:"max=500"`
}

// BulkAttendanceRequest marks every listed student with one status.
type BulkAttendanceRequest struct {
	Date       string                  `json:"date" validate:"required,datetime=2006-01-02"`
	Status     models.AttendanceStatus `json:"status" validate:"required,oneof=present absent late"`
	StudentIDs []string                `json:"studentIds" validate:"required,min=1,dive,required"`
}

// SessionQuery selects an academic test session.
type SessionQuery struct {
	Date    string `form:"date" validate:"required,datetime=2006-01-02"`
	BatchID string `form:"batchId"`
}

// SessionStudent is one roster line joined with its mark.
type SessionStudent struct {
	models.RosterEntry
	Status  models.AttendanceStatus `json:"status"`
	Remarks string                  `json:"remarks"`
	Marked  bool                    `json:"marked"`
}

// SessionResponse is the attendance page of a test session.
type SessionResponse struct {
	TestID   string                   `json:"testId"`
	Date     string                   `json:"date"`
	Students []SessionStudent         `json:"students"`
	Summary  models.AttendanceSummary `json:"summary"`
}
