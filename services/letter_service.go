package services

import (
	"errors"
	"fmt"
	"strings"

	"letterhead/models"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// Letter errors
var (
	ErrLetterNotFound     = errors.New("letter not found")
	ErrLetterLimitReached = errors.New("letter limit reached for current plan")
	ErrInvalidLetter      = errors.New("invalid letter")
)

// LetterInput carries the editable fields of a letter
type LetterInput struct {
	Name             string  `json:"name"`
	ProfileID        *string `json:"profile_id"`
	RecipientName    string  `json:"recipient_name"`
	RecipientAddress string  `json:"recipient_address"`
	Subject          string  `json:"subject"`
	Body             string  `json:"body"`
}

var bodyPolicy = bluemonday.UGCPolicy()

// SanitizeLetterBody strips scripts, handlers and unknown markup from editor HTML
func SanitizeLetterBody(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	return bodyPolicy.Sanitize(body)
}

func (in LetterInput) apply(db *gorm.DB, userID string, l *models.Letter) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Untitled letter"
	}
	if len(name) > 200 {
		return fmt.Errorf("%w: name must be at most 200 characters", ErrInvalidLetter)
	}

	l.BrandProfileID = nil
	if in.ProfileID != nil && *in.ProfileID != "" {
		if _, err := GetBrandProfile(db, userID, *in.ProfileID); err != nil {
			return err
		}
		id := *in.ProfileID
		l.BrandProfileID = &id
	}

	l.Name = name
	l.RecipientName = strings.TrimSpace(in.RecipientName)
	l.RecipientAddress = strings.TrimSpace(in.RecipientAddress)
	l.Subject = strings.TrimSpace(in.Subject)
	l.Body = SanitizeLetterBody(in.Body)
	return nil
}

// ListLetters returns the user's letters, most recently edited first
func ListLetters(db *gorm.DB, userID string) ([]models.Letter, error) {
	var letters []models.Letter
	if err := db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&letters).Error; err != nil {
		return nil, fmt.Errorf("failed to list letters: %w", err)
	}
	return letters, nil
}

// CountLetters returns how many letters the user has saved
func CountLetters(db *gorm.DB, userID string) (int64, error) {
	var count int64
	if err := db.Model(&models.Letter{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count letters: %w", err)
	}
	return count, nil
}

// GetLetter returns one of the user's letters with its brand profile loaded
func GetLetter(db *gorm.DB, userID, letterID string) (*models.Letter, error) {
	var letter models.Letter
	err := db.Preload("BrandProfile").Where("user_id = ? AND id = ?", userID, letterID).First(&letter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLetterNotFound
		}
		return nil, fmt.Errorf("failed to get letter: %w", err)
	}
	return &letter, nil
}

// CreateLetter saves a new letter, enforcing the FREE plan letter limit
func CreateLetter(db *gorm.DB, user *models.User, freeLimit int, in LetterInput) (*models.Letter, error) {
	check, err := CheckLetterLimit(db, user, freeLimit)
	if err != nil {
		return nil, err
	}
	if !check.Allowed {
		return nil, ErrLetterLimitReached
	}

	letter := &models.Letter{UserID: user.ID, PageCount: 1}
	if err := in.apply(db, user.ID, letter); err != nil {
		return nil, err
	}
	if err := db.Omit("BrandProfile").Create(letter).Error; err != nil {
		return nil, fmt.Errorf("failed to create letter: %w", err)
	}
	return letter, nil
}

// UpdateLetter replaces a letter's fields
func UpdateLetter(db *gorm.DB, userID, letterID string, in LetterInput) (*models.Letter, error) {
	letter, err := GetLetter(db, userID, letterID)
	if err != nil {
		return nil, err
	}
	if err := in.apply(db, userID, letter); err != nil {
		return nil, err
	}
	letter.BrandProfile = nil
	if err := db.Omit("BrandProfile").Save(letter).Error; err != nil {
		return nil, fmt.Errorf("failed to update letter: %w", err)
	}
	return letter, nil
}

// SetLetterPageCount records the page count of the latest layout
func SetLetterPageCount(db *gorm.DB, letterID string, pages int) error {
	return db.Model(&models.Letter{}).Where("id = ?", letterID).UpdateColumn("page_count", pages).Error
}

// DeleteLetter removes a letter and its export records. Stored files are
// returned so the caller can remove them from storage.
func DeleteLetter(db *gorm.DB, userID, letterID string) ([]models.GeneratedDocument, error) {
	letter, err := GetLetter(db, userID, letterID)
	if err != nil {
		return nil, err
	}

	var docs []models.GeneratedDocument
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("letter_id = ?", letter.ID).Find(&docs).Error; err != nil {
			return err
		}
		if err := tx.Where("letter_id = ?", letter.ID).Delete(&models.GeneratedDocument{}).Error; err != nil {
			return err
		}
		return tx.Delete(letter).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete letter: %w", err)
	}
	return docs, nil
}

// ResolveLetterProfile returns the profile a letter renders with: its own,
// else the user's default, else the built-in default
func ResolveLetterProfile(db *gorm.DB, letter *models.Letter) *models.BrandProfile {
	if letter.BrandProfile != nil {
		return letter.BrandProfile
	}
	if letter.BrandProfileID != nil {
		if p, err := GetBrandProfile(db, letter.UserID, *letter.BrandProfileID); err == nil {
			return p
		}
	}
	if p, err := GetDefaultBrandProfile(db, letter.UserID); err == nil {
		return p
	}
	p := models.DefaultBrandProfile()
	return &p
}
