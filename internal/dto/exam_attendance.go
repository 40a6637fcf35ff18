package dto

import (
	"time"

	"github.com/noah-isme/institute-admissions-api/internal/models"
)

// ExamAttendanceRequest records whether a registrant sat the exam.
type ExamAttendanceRequest struct {
	HasAttended      bool   `json:"hasAttended"`
	ExamDateAttended string `json:"examDateAttended" validate:"omitempty,datetime=2006-01-02"`
}

// ExamAttendanceFilter narrows the exam attendance roster.
type ExamAttendanceFilter struct {
	Date   string `form:"date" validate:"required,datetime=2006-01-02"`
	Status string `form:"status" validate:"omitempty,oneof=all present absent"`
	Search string `form:"search"`
}

// ExamRosterEntry is one registrant on the attendance roster.
type ExamRosterEntry struct {
	RegistrationID     string                  `json:"registrationId"`
	RegistrationNumber string                  `json:"registrationNumber"`
	StudentName        string                  `json:"studentName"`
	Email              string                  `json:"email"`
	Phone              string                  `json:"phone"`
	CurrentClass       string                  `json:"currentClass"`
	School             string                  `json:"school"`
	PreferredExamDate  *string                 `json:"preferredExamDate,omitempty"`
	Status             models.AttendanceStatus `json:"status"`
}

// ExamRosterResponse is the exam attendance page for one date.
type ExamRosterResponse struct {
	ExamID        string                   `json:"examId"`
	Date          string                   `json:"date"`
	Registrations []ExamRosterEntry        `json:"registrations"`
	Summary       models.AttendanceSummary `json:"summary"`
}

// ExportRequest asks for an attendance export.
type ExportRequest struct {
	Date   string              `json:"date" validate:"required,datetime=2006-01-02"`
	Format models.ExportFormat `json:"format" validate:"required,oneof=csv pdf xlsx"`
}

// ExportResponse points at a generated export file.
type ExportResponse struct {
	ExportID  string    `json:"exportId"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	Rows      int       `json:"rows"`
}

// ExportDownload is a resolved export ready to stream.
type ExportDownload struct {
	Filename    string
	ContentType string
	Path        string
}
