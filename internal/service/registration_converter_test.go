package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/institute-admissions-api/internal/models"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
)

func eligibleRegistration() models.Registration {
	return models.Registration{
		ID:             "reg-1",
		TenantID:       "tenant-1",
		ExamID:         "exam-1",
		StudentName:    "Asha Rao",
		Email:          "asha@example.com",
		Phone:          "9000000001",
		School:         "City School",
		RewardEligible: true,
		RewardDetails: &models.RewardDetails{
			RankFrom: 1, RankTo: 10, RewardType: models.RewardTypePercentage, RewardValue: 25,
		},
		EnrollmentStatus: models.EnrollmentStatusInterested,
	}
}

func TestConvertAppliesReward(t *testing.T) {
	batch := &models.Batch{ID: "batch-1", Course: "JEE", Fee: 20000}
	req, err := NewRegistrationConverter().Convert(eligibleRegistration(), batch, nil)
	require.NoError(t, err)

	assert.Equal(t, 15000.0, req.FeeAmount)
	assert.Equal(t, 5000.0, req.DiscountApplied)
	assert.Equal(t, 20000.0, req.BaseFee)
	assert.Equal(t, "batch-1", req.BatchID)
	assert.Equal(t, "JEE", req.Course)
	assert.Equal(t, "exam-1", req.ScholarshipExamID)
	assert.Equal(t, "reg-1", req.RegistrationID)
	assert.Equal(t, "Asha Rao", req.StudentName)
}

func TestConvertIgnoresRewardWhenNotEligible(t *testing.T) {
	reg := eligibleRegistration()
	reg.RewardEligible = false
	req, err := NewRegistrationConverter().Convert(reg, &models.Batch{ID: "b", Fee: 20000}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, req.DiscountApplied)
	assert.Equal(t, 20000.0, req.FeeAmount)
}

func TestConvertRejectsAlreadyConvertedRegardlessOfBatch(t *testing.T) {
	reg := eligibleRegistration()
	reg.ConvertedToStudent = true
	reg.EnrollmentStatus = models.EnrollmentStatusConverted
	converter := NewRegistrationConverter()

	for _, batch := range []*models.Batch{nil, {}, {ID: "b", Fee: 100}, {ID: "b", Fee: -1}} {
		_, err := converter.Convert(reg, batch, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrAlreadyConverted))
	}
}

func TestConvertRequiresBatch(t *testing.T) {
	converter := NewRegistrationConverter()
	_, err := converter.Convert(eligibleRegistration(), nil, nil)
	assert.True(t, errors.Is(err, appErrors.ErrMissingBatch))

	_, err = converter.Convert(eligibleRegistration(), &models.Batch{Fee: 100}, nil)
	assert.True(t, errors.Is(err, appErrors.ErrMissingBatch))
}

func TestConvertPropagatesInvalidFee(t *testing.T) {
	_, err := NewRegistrationConverter().Convert(eligibleRegistration(), &models.Batch{ID: "b", Fee: -10}, nil)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidFee))
}

func TestConvertOverridesWinFieldByField(t *testing.T) {
	name := "Asha R."
	school := ""
	dob := time.Date(2008, 5, 1, 0, 0, 0, 0, time.UTC)
	overrides := &models.EnrollmentOverrides{StudentName: &name, School: &school, DateOfBirth: &dob}

	req, err := NewRegistrationConverter().Convert(eligibleRegistration(), &models.Batch{ID: "b", Fee: 100}, overrides)
	require.NoError(t, err)
	assert.Equal(t, "Asha R.", req.StudentName)
	assert.Equal(t, "", req.School)
	assert.Equal(t, "asha@example.com", req.Email)
	require.NotNil(t, req.DateOfBirth)
	assert.True(t, dob.Equal(*req.DateOfBirth))
}

func TestConvertLeavesRegistrationUntouched(t *testing.T) {
	reg := eligibleRegistration()
	_, err := NewRegistrationConverter().Convert(reg, &models.Batch{ID: "b", Fee: 100}, nil)
	require.NoError(t, err)
	assert.False(t, reg.ConvertedToStudent)
	assert.Equal(t, models.EnrollmentStatusInterested, reg.EnrollmentStatus)
}
