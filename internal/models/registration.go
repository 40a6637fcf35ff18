package models

import "time"

// ExamResult is the outcome of a scholarship exam for one registration.
type ExamResult string

const (
	ExamResultPass    ExamResult = "pass"
	ExamResultFail    ExamResult = "fail"
	ExamResultAbsent  ExamResult = "absent"
	ExamResultPending ExamResult = "pending"
)

// Valid returns true when the result is a supported value.
func (r ExamResult) Valid() bool {
	switch r {
	case ExamResultPass, ExamResultFail, ExamResultAbsent, ExamResultPending:
		return true
	default:
		return false
	}
}

// RewardType selects how a scholarship reward discounts a fee.
type RewardType string

const (
	RewardTypePercentage RewardType = "percentage"
	RewardTypeFixed      RewardType = "fixed"
)

// Valid returns true when the reward type is supported.
func (t RewardType) Valid() bool {
	return t == RewardTypePercentage || t == RewardTypeFixed
}

// EnrollmentStatus tracks how far a registration is from becoming a student.
type EnrollmentStatus string

const (
	EnrollmentStatusNotInterested EnrollmentStatus = "notInterested"
	EnrollmentStatusInterested    EnrollmentStatus = "interested"
	EnrollmentStatusEnrolled      EnrollmentStatus = "enrolled"
	EnrollmentStatusConverted     EnrollmentStatus = "converted"
)

// Valid returns true when the status is a supported value.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusNotInterested, EnrollmentStatusInterested, EnrollmentStatusEnrolled, EnrollmentStatusConverted:
		return true
	default:
		return false
	}
}

// RewardDetails describes the reward tier a registration qualified for.
type RewardDetails struct {
	RankFrom    int        `db:"reward_rank_from" json:"rankFrom"`
	RankTo      int        `db:"reward_rank_to" json:"rankTo"`
	RewardType  RewardType `db:"reward_type" json:"rewardType"`
	RewardValue float64    `db:"reward_value" json:"rewardValue"`
	Description string     `db:"reward_description" json:"description"`
}

// Covers reports whether rank falls inside the tier.
func (r RewardDetails) Covers(rank int) bool {
	return rank > 0 && rank >= r.RankFrom && (r.RankTo == 0 || rank <= r.RankTo)
}

// Registration is a scholarship-exam applicant prior to becoming a student.
type Registration struct {
	ID                 string `db:"id" json:"id"`
	TenantID           string `db:"tenant_id" json:"tenantId"`
	ExamID             string `db:"exam_id" json:"examId"`
	RegistrationNumber string `db:"registration_number" json:"registrationNumber"`

	StudentName   string     `db:"student_name" json:"studentName"`
	Email         string     `db:"email" json:"email"`
	Phone         string     `db:"phone" json:"phone"`
	DateOfBirth   *time.Time `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	Gender        string     `db:"gender" json:"gender"`
	FatherName    string     `db:"father_name" json:"fatherName"`
	MotherName    string     `db:"mother_name" json:"motherName"`
	GuardianPhone string     `db:"guardian_phone" json:"guardianPhone"`
	CurrentClass  string     `db:"current_class" json:"currentClass"`
	School        string     `db:"school" json:"school"`
	Address       string     `db:"address" json:"address"`

	MarksObtained float64    `db:"marks_obtained" json:"marksObtained"`
	Percentage    float64    `db:"percentage" json:"percentage"`
	Rank          int        `db:"rank" json:"rank"`
	Result        ExamResult `db:"result" json:"result"`

	RewardEligible bool           `db:"reward_eligible" json:"rewardEligible"`
	RewardDetails  *RewardDetails `db:"-" json:"rewardDetails,omitempty"`

	EnrollmentStatus   EnrollmentStatus `db:"enrollment_status" json:"enrollmentStatus"`
	ConvertedToStudent bool             `db:"converted_to_student" json:"convertedToStudent"`
	StudentID          *string          `db:"student_id" json:"studentId,omitempty"`

	HasAttended       bool    `db:"has_attended" json:"hasAttended"`
	ExamDateAttended  *string `db:"exam_date_attended" json:"examDateAttended,omitempty"`
	PreferredExamDate *string `db:"preferred_exam_date" json:"preferredExamDate,omitempty"`

	RegisteredAt time.Time `db:"registered_at" json:"registeredAt"`
}

// AttendedOn reports whether the registrant was marked present on date (YYYY-MM-DD).
func (r Registration) AttendedOn(date string) bool {
	return r.HasAttended && r.ExamDateAttended != nil && *r.ExamDateAttended == date
}

// RegistrationFilter narrows registration listings.
type RegistrationFilter struct {
	ExamID           string
	EnrollmentStatus EnrollmentStatus
	Result           ExamResult
	Search           string
	Page             int
	PageSize         int
}
