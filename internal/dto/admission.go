package dto

import "github.com/noah-isme/institute-admissions-api/internal/models"

// FeeQuoteResponse is returned when a batch is selected for a registration.
type FeeQuoteResponse struct {
	RegistrationID string                `json:"registrationId"`
	BatchID        string                `json:"batchId"`
	BatchName      string                `json:"batchName"`
	Course         string                `json:"course"`
	BatchFull      bool                  `json:"batchFull"`
	Fee            models.FeeBreakdown   `json:"fee"`
	Reward         *models.RewardDetails `json:"reward,omitempty"`
}

// ConvertRegistrationRequest is the admission form submitted to convert a registration.
type ConvertRegistrationRequest struct {
	BatchID   string                      `json:"batchId"`
	Overrides *models.EnrollmentOverrides `json:"overrides,omitempty"`
}

// ConversionResponse describes the created student.
type ConversionResponse struct {
	StudentID      string                   `json:"studentId"`
	RegistrationID string                   `json:"registrationId"`
	Enrollment     models.EnrollmentRequest `json:"enrollment"`
}

// UpdateEnrollmentStatusRequest toggles the enrollment interest of a registration.
type UpdateEnrollmentStatusRequest struct {
	EnrollmentStatus models.EnrollmentStatus `json:"enrollmentStatus" validate:"required,oneof=notInterested interested enrolled"`
}

// RegistrationFilter is the query accepted by the registration listing.
type RegistrationFilter struct {
	EnrollmentStatus string `form:"enrollmentStatus" validate:"omitempty,oneof=notInterested interested enrolled converted"`
	Result           string `form:"result" validate:"omitempty,oneof=pass fail absent pending"`
	Search           string `form:"search"`
	Page             int    `form:"page" validate:"omitempty,min=1"`
	PageSize         int    `form:"pageSize" validate:"omitempty,min=1,max=200"`
}
