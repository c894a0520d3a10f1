package services

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"letterhead/models"

	"gorm.io/gorm"
)

// Brand profile errors
var (
	ErrProfileNotFound = errors.New("brand profile not found")
	ErrInvalidProfile  = errors.New("invalid brand profile")
)

// BrandProfileInput carries the editable fields of a brand profile.
// Nil flags keep their current (or default) value.
type BrandProfileInput struct {
	Name          string `json:"name"`
	Slogan        string `json:"slogan"`
	Address       string `json:"address"`
	Website       string `json:"website"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	PrimaryColor  string `json:"primary_color"`
	FontFamily    string `json:"font_family"`
	Layout        string `json:"layout"`
	LogoURL       string `json:"logo_url"`
	SignatureURL  string `json:"signature_url"`
	SignerName    string `json:"signer_name"`
	ShowLogo      *bool  `json:"show_logo"`
	ShowFooter    *bool  `json:"show_footer"`
	ShowSignature *bool  `json:"show_signature"`
	IsDefault     bool   `json:"is_default"`
}

func invalidProfile(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidProfile, fmt.Sprintf(format, args...))
}

// apply copies the input onto p, filling empty style fields with defaults
func (in BrandProfileInput) apply(p *models.BrandProfile) error {
	defaults := models.DefaultBrandProfile()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return invalidProfile("name is required")
	}
	if len(name) > 120 {
		return invalidProfile("name must be at most 120 characters")
	}

	color := strings.TrimSpace(in.PrimaryColor)
	if color == "" {
		color = defaults.PrimaryColor
	}
	if !models.IsValidColor(color) {
		return invalidProfile("primary_color %q is not a hex color", color)
	}

	font := strings.TrimSpace(in.FontFamily)
	if font == "" {
		font = defaults.FontFamily
	}
	if !models.IsValidFont(font) {
		return invalidProfile("font_family %q is not supported", font)
	}

	layout := strings.TrimSpace(in.Layout)
	if layout == "" {
		layout = defaults.Layout
	}
	if !models.IsValidLayout(layout) {
		return invalidProfile("layout %q is not supported", layout)
	}

	for field, v := range map[string]string{"logo_url": in.LogoURL, "signature_url": in.SignatureURL} {
		if !isAssetURL(v) {
			return invalidProfile("%s must be an http(s) URL or a site path", field)
		}
	}

	p.CompanyName = name
	p.Slogan = strings.TrimSpace(in.Slogan)
	p.Address = strings.TrimSpace(in.Address)
	p.Website = strings.TrimSpace(in.Website)
	p.Email = strings.TrimSpace(in.Email)
	p.Phone = strings.TrimSpace(in.Phone)
	p.PrimaryColor = color
	p.FontFamily = font
	p.Layout = layout
	p.LogoURL = strings.TrimSpace(in.LogoURL)
	p.SignatureURL = strings.TrimSpace(in.SignatureURL)
	p.SignerName = strings.TrimSpace(in.SignerName)
	if in.ShowLogo != nil {
		p.ShowLogo = *in.ShowLogo
	}
	if in.ShowFooter != nil {
		p.ShowFooter = *in.ShowFooter
	}
	if in.ShowSignature != nil {
		p.ShowSignature = *in.ShowSignature
	}
	return nil
}

func isAssetURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || (strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//")) {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ListBrandProfiles returns a user's profiles, default first
func ListBrandProfiles(db *gorm.DB, userID string) ([]models.BrandProfile, error) {
	var profiles []models.BrandProfile
	err := db.Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("created_at ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list brand profiles: %w", err)
	}
	return profiles, nil
}

// GetBrandProfile returns one of the user's profiles
func GetBrandProfile(db *gorm.DB, userID, profileID string) (*models.BrandProfile, error) {
	var profile models.BrandProfile
	err := db.Where("user_id = ? AND id = ?", userID, profileID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get brand profile: %w", err)
	}
	return &profile, nil
}

// GetDefaultBrandProfile returns the user's default profile, falling back to
// their oldest profile
func GetDefaultBrandProfile(db *gorm.DB, userID string) (*models.BrandProfile, error) {
	var profile models.BrandProfile
	err := db.Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("created_at ASC").
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get default brand profile: %w", err)
	}
	return &profile, nil
}

// CreateBrandProfile creates a profile. A user's first profile is always the
// default; asking for default on a later one moves the flag to it.
func CreateBrandProfile(db *gorm.DB, userID string, in BrandProfileInput) (*models.BrandProfile, error) {
	profile := models.DefaultBrandProfile()
	profile.UserID = userID
	if err := in.apply(&profile); err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.BrandProfile{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		profile.IsDefault = count == 0 || in.IsDefault
		if profile.IsDefault && count > 0 {
			if err := clearDefault(tx, userID); err != nil {
				return err
			}
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create brand profile: %w", err)
	}
	return &profile, nil
}

// UpdateBrandProfile replaces a profile's fields
func UpdateBrandProfile(db *gorm.DB, userID, profileID string, in BrandProfileInput) (*models.BrandProfile, error) {
	profile, err := GetBrandProfile(db, userID, profileID)
	if err != nil {
		return nil, err
	}
	if err := in.apply(profile); err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if in.IsDefault && !profile.IsDefault {
			if err := clearDefault(tx, userID); err != nil {
				return err
			}
			profile.IsDefault = true
		}
		return tx.Save(profile).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update brand profile: %w", err)
	}
	return profile, nil
}

// SetDefaultBrandProfile makes a profile the user's only default
func SetDefaultBrandProfile(db *gorm.DB, userID, profileID string) error {
	if _, err := GetBrandProfile(db, userID, profileID); err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := clearDefault(tx, userID); err != nil {
			return err
		}
		return tx.Model(&models.BrandProfile{}).Where("id = ?", profileID).Update("is_default", true).Error
	})
}

// DeleteBrandProfile removes a profile. Letters that used it fall back to the
// default profile, and deleting the default promotes the oldest remaining one.
func DeleteBrandProfile(db *gorm.DB, userID, profileID string) error {
	profile, err := GetBrandProfile(db, userID, profileID)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Letter{}).
			Where("user_id = ? AND brand_profile_id = ?", userID, profileID).
			Update("brand_profile_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach letters: %w", err)
		}
		if err := tx.Delete(profile).Error; err != nil {
			return fmt.Errorf("failed to delete brand profile: %w", err)
		}
		if !profile.IsDefault {
			return nil
		}

		var next models.BrandProfile
		err := tx.Where("user_id = ?", userID).Order("created_at ASC").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_default", true).Error
	})
}

func clearDefault(tx *gorm.DB, userID string) error {
	return tx.Model(&models.BrandProfile{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}
