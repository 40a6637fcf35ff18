package models

import "time"

// FeeBreakdown is the result of applying a reward to a base fee.
type FeeBreakdown struct {
	BaseFee  float64 `json:"baseFee"`
	Discount float64 `json:"discount"`
	FinalFee float64 `json:"finalFee"`
}

// EnrollmentOverrides carries fields edited in the admission form. Nil fields keep the registration value.
type EnrollmentOverrides struct {
	StudentName   *string    `json:"studentName,omitempty" validate:"omitempty,min=1,max=200"`
	Email         *string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string    `json:"phone,omitempty" validate:"omitempty,max=32"`
	DateOfBirth   *time.Time `json:"dateOfBirth,omitempty"`
	Gender        *string    `json:"gender,omitempty" validate:"omitempty,max=20"`
	FatherName    *string    `json:"fatherName,omitempty"`
	MotherName    *string    `json:"motherName,omitempty"`
	GuardianPhone *string    `json:"guardianPhone,omitempty" validate:"omitempty,max=32"`
	CurrentClass  *string    `json:"currentClass,omitempty"`
	School        *string    `json:"school,omitempty"`
	Address       *string    `json:"address,omitempty" validate:"omitempty,max=500"`
}

// EnrollmentRequest is the snapshot handed to the student store when a registration converts.
type EnrollmentRequest struct {
	TenantID      string     `db:"tenant_id" json:"tenantId"`
	StudentName   string     `db:"name" json:"studentName"`
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

	BatchID         string  `db:"batch_id" json:"batchId"`
	Course          string  `db:"course" json:"course"`
	BaseFee         float64 `db:"base_fee" json:"baseFee"`
	FeeAmount       float64 `db:"fee_amount" json:"feeAmount"`
	DiscountApplied float64 `db:"discount_applied" json:"discountApplied"`

	ScholarshipExamID string `db:"scholarship_exam_id" json:"scholarshipExamId"`
	RegistrationID    string `db:"registration_id" json:"registrationId"`
}
