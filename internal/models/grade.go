package models

import "time"

// GradedRecord is a single student result for a test, used as aggregation input.
type GradedRecord struct {
	StudentID   string  `db:"student_id" json:"studentId"`
	StudentName string  `db:"student_name" json:"studentName"`
	TestID      string  `db:"test_id" json:"testId"`
	TestName    string  `db:"test_name" json:"testName"`
	Subject     string  `db:"subject" json:"subject"`
	Percentage  float64 `db:"percentage" json:"percentage"`
	Grade       string  `db:"grade" json:"grade"`
}

// GradedRecordFilter narrows the records fed to report aggregation.
type GradedRecordFilter struct {
	Course  string
	BatchID string
	From    *time.Time
	To      *time.Time
}

// AggregateOptions tunes report aggregation.
// A nil PassingThreshold uses the default of 40; zero is a valid threshold.
type AggregateOptions struct {
	PassingThreshold *float64
	TopLimit         int
}

// ReportStatistics summarises a set of graded records.
type ReportStatistics struct {
	TotalTests     int    `json:"totalTests"`
	AvgPercentage  string `json:"avgPercentage"`
	PassPercentage string `json:"passPercentage"`
}

// SubjectPerformance is the per-subject slice of a report.
type SubjectPerformance struct {
	Subject       string `json:"subject"`
	TestCount     int    `json:"testCount"`
	AvgPercentage string `json:"avgPercentage"`
}

// ReportAggregate is the full output of report aggregation.
type ReportAggregate struct {
	Statistics         ReportStatistics     `json:"statistics"`
	TopPerformers      []GradedRecord       `json:"topPerformers"`
	SubjectPerformance []SubjectPerformance `json:"subjectPerformance"`
}

// AcademicTest is a scheduled test of a batch with its marking scheme.
type AcademicTest struct {
	ID           string  `db:"id" json:"id"`
	TenantID     string  `db:"tenant_id" json:"tenantId"`
	BatchID      string  `db:"batch_id" json:"batchId"`
	TestName     string  `db:"test_name" json:"testName"`
	Subject      string  `db:"subject" json:"subject"`
	TotalMarks   float64 `db:"total_marks" json:"totalMarks"`
	PassingMarks float64 `db:"passing_marks" json:"passingMarks"`
}

// TestMark is the scored result of one student in a test.
type TestMark struct {
	StudentID     string    `db:"student_id" json:"studentId"`
	StudentName   string    `db:"student_name" json:"studentName,omitempty"`
	MarksObtained float64   `db:"marks_obtained" json:"marksObtained"`
	Percentage    float64   `db:"percentage" json:"percentage"`
	Grade         string    `db:"grade" json:"grade"`
	Passed        bool      `db:"passed" json:"passed"`
	Remarks       string    `db:"remarks" json:"remarks"`
	EnteredBy     string    `db:"entered_by" json:"enteredBy,omitempty"`
	EnteredAt     time.Time `db:"entered_at" json:"enteredAt"`
}

// TestMarkStatistics summarises the marks entered for a test.
type TestMarkStatistics struct {
	TotalStudents  int     `json:"totalStudents"`
	PassedStudents int     `json:"passedStudents"`
	FailedStudents int     `json:"failedStudents"`
	AvgMarks       string  `json:"avgMarks"`
	HighestMarks   float64 `json:"highestMarks"`
	PassPercentage string  `json:"passPercentage"`
}
