package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"time"

	"letterhead/models"

	"gorm.io/gorm"
)

const (
	// ResetTokenLength is the length of the reset token in bytes
	ResetTokenLength = 32
	// ResetTokenExpiration is how long a reset token is valid
	ResetTokenExpiration = 1 * time.Hour
)

var ErrInvalidResetToken = errors.New("invalid or expired token")

// GenerateResetToken creates a password reset token for the user with this email.
// Unknown or inactive emails return (nil, nil) so callers cannot tell them apart.
func GenerateResetToken(db *gorm.DB, userEmail string) (*models.PasswordResetToken, error) {
	userEmail = NormalizeEmail(userEmail)

	var user models.User
	if err := db.Where("email = ?", userEmail).First(&user).Error; err != nil {
		log.Printf("Password reset requested for non-existent email: %s", userEmail)
		return nil, nil
	}
	if !user.IsActive {
		log.Printf("Password reset requested for inactive user: %s", userEmail)
		return nil, nil
	}

	// One live token per user
	db.Where("user_id = ?", user.ID).Delete(&models.PasswordResetToken{})

	tokenBytes := make([]byte, ResetTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random token: %w", err)
	}

	resetToken := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     base64.URLEncoding.EncodeToString(tokenBytes),
		ExpiresAt: time.Now().Add(ResetTokenExpiration),
		User:      &user,
	}
	if err := db.Omit("User").Create(resetToken).Error; err != nil {
		return nil, fmt.Errorf("failed to create reset token: %w", err)
	}

	LogSecurityEvent("PASSWORD_RESET_REQUESTED", user.ID, "Password reset requested")
	return resetToken, nil
}

// ValidateResetToken returns the user a live token belongs to
func ValidateResetToken(db *gorm.DB, token string) (*models.User, error) {
	var resetToken models.PasswordResetToken
	if err := db.Preload("User").Where("token = ?", token).First(&resetToken).Error; err != nil {
		return nil, ErrInvalidResetToken
	}

	if resetToken.IsExpired() {
		db.Delete(&resetToken)
		return nil, ErrInvalidResetToken
	}
	if resetToken.User == nil || !resetToken.User.IsActive {
		return nil, ErrAccountInactive
	}

	return resetToken.User, nil
}

// ResetPassword sets a new password, consumes the token and signs the user
// out everywhere
func ResetPassword(db *gorm.DB, token string, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := ValidateResetToken(db, token)
	if err != nil {
		LogSecurityEvent("PASSWORD_RESET_FAILED", "", "Reset attempted with an invalid token")
		return err
	}

	hashedPassword, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Updates(map[string]interface{}{
			"password":              hashedPassword,
			"failed_login_attempts": 0,
			"lockout_until":         nil,
		}).Error; err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if err := tx.Where("token = ?", token).Delete(&models.PasswordResetToken{}).Error; err != nil {
			return fmt.Errorf("failed to delete token: %w", err)
		}
		return DeleteAllUserSessions(tx, user.ID)
	})
	if err != nil {
		return err
	}

	LogSecurityEvent("PASSWORD_RESET_COMPLETED", user.ID, "Password successfully reset")
	return nil
}

// CleanupExpiredTokens deletes all expired password reset tokens
func CleanupExpiredTokens(db *gorm.DB) (int64, error) {
	result := db.Where("expires_at < ?", time.Now()).Delete(&models.PasswordResetToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to cleanup reset tokens: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("[INFO] Cleaned up %d expired password reset tokens", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
