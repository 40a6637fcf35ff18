package service

import (
	"github.com/noah-isme/institute-admissions-api/internal/models"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
)

// RegistrationConverter turns a scholarship registration and a selected batch
// into the enrollment request handed to the student store.
type RegistrationConverter struct{}

// NewRegistrationConverter constructs RegistrationConverter.
func NewRegistrationConverter() *RegistrationConverter {
	return &RegistrationConverter{}
}

// Convert builds the enrollment snapshot. It never flags the registration;
// the caller persists the conversion together with the student.
func (c *RegistrationConverter) Convert(reg models.Registration, batch *models.Batch, overrides *models.EnrollmentOverrides) (models.EnrollmentRequest, error) {
	if reg.ConvertedToStudent {
		return models.EnrollmentRequest{}, appErrors.Clone(appErrors.ErrAlreadyConverted, "")
	}
	if batch == nil || batch.ID == "" {
		return models.EnrollmentRequest{}, appErrors.Clone(appErrors.ErrMissingBatch, "")
	}

	var reward *models.RewardDetails
	if reg.RewardEligible {
		reward = reg.RewardDetails
	}
	fee, err := ComputeFee(batch.Fee, reward)
	if err != nil {
		return models.EnrollmentRequest{}, err
	}

	req := models.EnrollmentRequest{
		TenantID:      reg.TenantID,
		StudentName:   reg.StudentName,
		Email:         reg.Email,
		Phone:         reg.Phone,
		DateOfBirth:   reg.DateOfBirth,
		Gender:        reg.Gender,
		FatherName:    reg.FatherName,
		MotherName:    reg.MotherName,
		GuardianPhone: reg.GuardianPhone,
		CurrentClass:  reg.CurrentClass,
		School:        reg.School,
		Address:       reg.Address,

		BatchID:         batch.ID,
		Course:          batch.Course,
		BaseFee:         fee.BaseFee,
		FeeAmount:       fee.FinalFee,
		DiscountApplied: fee.Discount,

		ScholarshipExamID: reg.ExamID,
		RegistrationID:    reg.ID,
	}
	if overrides != nil {
		applyOverrides(&req, overrides)
	}
	return req, nil
}

func applyOverrides(req *models.EnrollmentRequest, o *models.EnrollmentOverrides) {
	override := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	override(&req.StudentName, o.StudentName)
	override(&req.Email, o.Email)
	override(&req.Phone, o.Phone)
	override(&req.Gender, o.Gender)
	override(&req.FatherName, o.FatherName)
	override(&req.MotherName, o.MotherName)
	override(&req.GuardianPhone, o.GuardianPhone)
	override(&req.CurrentClass, o.CurrentClass)
	override(&req.School, o.School)
	override(&req.Address, o.Address)
	if o.DateOfBirth != nil {
		dob := *o.DateOfBirth
		req.DateOfBirth = &dob
	}
}
