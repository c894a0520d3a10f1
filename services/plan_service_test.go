package services

import (
	"testing"

	"letterhead/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckLetterLimit(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "limit@example.com", models.PlanFree)

	check, err := CheckLetterLimit(db, user, 2)
	require.NoError(t, err)
	assert.True(t, check.Allowed)
	assert.Equal(t, int64(2), check.Limit)
	assert.Equal(t, float64(0), check.PercentageUsed)

	db.Create(&models.Letter{UserID: user.ID, Name: "a"})
	db.Create(&models.Letter{UserID: user.ID, Name: "b"})

	check, err = CheckLetterLimit(db, user, 2)
	require.NoError(t, err)
	assert.False(t, check.Allowed)
	assert.Equal(t, float64(100), check.PercentageUsed)
	assert.NotEmpty(t, check.Message)
}

func TestGetPlanStatusAndUpgrade(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "upgrade@example.com", models.PlanFree)
	db.Create(&models.Letter{UserID: user.ID, Name: "a"})

	status, err := GetPlanStatus(db, user, 1)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, status.Plan)
	assert.False(t, status.IsPro)
	assert.Equal(t, int64(1), status.LetterCount)
	assert.False(t, status.Letters.Allowed)

	require.NoError(t, UpgradePlan(db, user))
	assert.ErrorIs(t, UpgradePlan(db, user), ErrAlreadyPro)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, models.PlanPro, stored.Plan)

	status, err = GetPlanStatus(db, &stored, 1)
	require.NoError(t, err)
	assert.True(t, status.IsPro)
	assert.True(t, status.Letters.Allowed)
	assert.Equal(t, int64(-1), status.Letters.Limit)
}
