package dto

import "github.com/noah-isme/institute-admissions-api/internal/models"

// MarkEntry is the raw score of one student.
type MarkEntry struct {
	StudentID     string  `json:"studentId" validate:"required"`
	MarksObtained float64 `json:"marksObtained" validate:"gte=0"`
	Remarks       string  `json:"remarks" validate:"max=500"`
}

// EnterMarksRequest upserts the scores of a test.
type EnterMarksRequest struct {
	Marks []MarkEntry `json:"marks" validate:"required,min=1,max=1000,dive"`
}

// TestMarksResponse is the marks sheet of a test.
type TestMarksResponse struct {
	Test       models.AcademicTest       `json:"test"`
	Marks      []models.TestMark         `json:"marks"`
	Statistics models.TestMarkStatistics `json:"statistics"`
}
