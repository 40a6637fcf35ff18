package models

// ScholarshipExam is the exam a registration belongs to.
type ScholarshipExam struct {
	ID           string  `db:"id" json:"id"`
	TenantID     string  `db:"tenant_id" json:"tenantId"`
	ExamName     string  `db:"exam_name" json:"examName"`
	ExamCode     string  `db:"exam_code" json:"examCode"`
	PassingMarks float64 `db:"passing_marks" json:"passingMarks"`
}

// ExamCounts are raw registration counts for an exam.
type ExamCounts struct {
	TotalRegistrations int `db:"total_registrations"`
	Appeared           int `db:"appeared"`
	Passed             int `db:"passed"`
	Enrolled           int `db:"enrolled"`
}

// ExamStats is the stats view of an exam.
type ExamStats struct {
	TotalRegistrations int    `json:"totalRegistrations"`
	Appeared           int    `json:"appeared"`
	Passed             int    `json:"passed"`
	Enrolled           int    `json:"enrolled"`
	Absent             int    `json:"absent"`
	PassPercentage     string `json:"passPercentage"`
	ConversionRate     string `json:"conversionRate"`
}
