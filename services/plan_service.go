package services

import (
	"errors"
	"fmt"

	"letterhead/models"

	"gorm.io/gorm"
)

var ErrAlreadyPro = errors.New("account is already on the PRO plan")

// LimitCheckResult contains the result of a limit check. Limit is -1 when
// the plan is unlimited.
type LimitCheckResult struct {
	Allowed        bool    `json:"allowed"`
	CurrentUsage   int64   `json:"current_usage"`
	Limit          int64   `json:"limit"`
	PercentageUsed float64 `json:"percentage_used"`
	Message        string  `json:"message,omitempty"`
}

// PlanStatus summarizes a user's plan for the dashboard
type PlanStatus struct {
	Plan        string           `json:"plan"`
	IsPro       bool             `json:"is_pro"`
	LetterCount int64            `json:"letter_count"`
	Letters     LimitCheckResult `json:"letters"`
}

// CheckLetterLimit reports whether the user may save another letter
func CheckLetterLimit(db *gorm.DB, user *models.User, freeLimit int) (*LimitCheckResult, error) {
	count, err := CountLetters(db, user.ID)
	if err != nil {
		return nil, err
	}

	if user.IsPro() {
		return &LimitCheckResult{Allowed: true, CurrentUsage: count, Limit: -1}, nil
	}

	limit := int64(freeLimit)
	result := &LimitCheckResult{
		Allowed:      count < limit,
		CurrentUsage: count,
		Limit:        limit,
	}
	if limit > 0 {
		result.PercentageUsed = float64(count) / float64(limit) * 100
	}
	if !result.Allowed {
		result.Message = fmt.Sprintf("The FREE plan includes %d saved letter(s). Upgrade to PRO for unlimited letters.", limit)
	}
	return result, nil
}

// GetPlanStatus returns the plan and letter usage for a user
func GetPlanStatus(db *gorm.DB, user *models.User, freeLimit int) (*PlanStatus, error) {
	check, err := CheckLetterLimit(db, user, freeLimit)
	if err != nil {
		return nil, err
	}
	return &PlanStatus{
		Plan:        user.Plan,
		IsPro:       user.IsPro(),
		LetterCount: check.CurrentUsage,
		Letters:     *check,
	}, nil
}

// UpgradePlan moves a FREE user to PRO
func UpgradePlan(db *gorm.DB, user *models.User) error {
	if user.IsPro() {
		return ErrAlreadyPro
	}
	if err := db.Model(user).Update("plan", models.PlanPro).Error; err != nil {
		return fmt.Errorf("failed to upgrade plan: %w", err)
	}
	user.Plan = models.PlanPro
	return nil
}
