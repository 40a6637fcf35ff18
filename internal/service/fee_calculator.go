package service

import (
	"fmt"
	"math"

	"github.com/noah-isme/institute-admissions-api/internal/models"
	appErrors "github.com/noah-isme/institute-admissions-api/pkg/errors"
)

// ComputeFee applies an optional scholarship reward to a batch fee. Amounts are
// not rounded; the discount is capped at the base fee so the final fee is never negative.
func ComputeFee(baseFee float64, reward *models.RewardDetails) (models.FeeBreakdown, error) {
	if baseFee < 0 || math.IsNaN(baseFee) {
		return models.FeeBreakdown{}, appErrors.Clone(appErrors.ErrInvalidFee, fmt.Sprintf("base fee %.2f must not be negative", baseFee))
	}
	if reward == nil {
		return models.FeeBreakdown{BaseFee: baseFee, FinalFee: baseFee}, nil
	}
	if reward.RewardValue < 0 || math.IsNaN(reward.RewardValue) {
		return models.FeeBreakdown{}, appErrors.Clone(appErrors.ErrInvalidFee, fmt.Sprintf("reward value %.2f must not be negative", reward.RewardValue))
	}

	var discount float64
	switch reward.RewardType {
	case models.RewardTypePercentage:
		discount = baseFee * reward.RewardValue / 100
	case models.RewardTypeFixed:
		discount = reward.RewardValue
	default:
		return models.FeeBreakdown{}, appErrors.Clone(appErrors.ErrInvalidFee, fmt.Sprintf("unknown reward type %q", reward.RewardType))
	}
	discount = math.Min(discount, baseFee)

	return models.FeeBreakdown{
		BaseFee:  baseFee,
		Discount: discount,
		FinalFee: math.Max(baseFee-discount, 0),
	}, nil
}
