package services

import (
	"fmt"
	"testing"

	"letterhead/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory database with every model migrated
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:mem_%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.PasswordResetToken{},
		&models.BrandProfile{},
		&models.Letter{},
		&models.GeneratedDocument{},
		&models.AuditLog{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		WaitForAuditWrites()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email, plan string) *models.User {
	t.Helper()
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	user := &models.User{
		Name:     "Test User",
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
		Plan:     plan,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
