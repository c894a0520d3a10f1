package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Header layouts
const (
	LayoutExecutive = "executive"
	LayoutClassic   = "classic"
	LayoutModern    = "modern"
	LayoutMinimal   = "minimal"
)

// Font families offered by the editor
const (
	FontSans    = "sans"
	FontSerif   = "serif"
	FontDisplay = "display"
	FontGrotesk = "grotesk"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// BrandProfile is a letterhead: the company identity drawn in the header,
// footer and signature of every page
type BrandProfile struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"-"`

	CompanyName  string `gorm:"not null" json:"name"`
	Slogan       string `json:"slogan"`
	Address      string `gorm:"type:text" json:"address"`
	Website      string `json:"website"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	PrimaryColor string `gorm:"not null;default:#0f172a" json:"primary_color"`
	FontFamily   string `gorm:"not null;default:sans" json:"font_family"`
	Layout       string `gorm:"not null;default:classic" json:"layout"`

	LogoURL      string `json:"logo_url"`
	SignatureURL string `json:"signature_url"`
	SignerName   string `json:"signer_name"`

	ShowLogo      bool `gorm:"not null" json:"show_logo"`
	ShowFooter    bool `gorm:"not null" json:"show_footer"`
	ShowSignature bool `gorm:"not null" json:"show_signature"`
	IsDefault     bool `gorm:"not null" json:"is_default"`
}

// DefaultBrandProfile returns the values a new profile starts from
func DefaultBrandProfile() BrandProfile {
	return BrandProfile{
		CompanyName:  "Your Company",
		Address:      "123 Business Rd, Suite 100",
		Website:      "www.example.com",
		PrimaryColor: "#0f172a",
		FontFamily:   FontSans,
		Layout:       LayoutClassic,
		ShowLogo:     true,
		ShowFooter:   true,
	}
}

func (b *BrandProfile) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// HasHeader reports whether page 1 carries a header block
func (b *BrandProfile) HasHeader() bool {
	return b.Layout != LayoutMinimal
}

// HasSignature reports whether a signature image should be drawn on the last page
func (b *BrandProfile) HasSignature() bool {
	return b.ShowSignature && strings.TrimSpace(b.SignatureURL) != ""
}

// IsValidColor checks the primary color is a CSS hex color
func IsValidColor(color string) bool {
	return hexColorRegex.MatchString(color)
}

// IsValidLayout checks a layout name
func IsValidLayout(layout string) bool {
	switch layout {
	case LayoutExecutive, LayoutClassic, LayoutModern, LayoutMinimal:
		return true
	}
	return false
}

// IsValidFont checks a font family name
func IsValidFont(font string) bool {
	switch font {
	case FontSans, FontSerif, FontDisplay, FontGrotesk:
		return true
	}
	return false
}

func (BrandProfile) TableName() string {
	return "brand_profiles"
}
