package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Letter is a saved letter draft. Body holds sanitized rich-text HTML.
type Letter struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"last_modified"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"-"`

	// Profile the letter was composed with; nil falls back to the user's default
	BrandProfileID *string       `gorm:"type:uuid;index" json:"profile_id"`
	BrandProfile   *BrandProfile `gorm:"foreignKey:BrandProfileID" json:"profile,omitempty"`

	Name             string `gorm:"not null" json:"name"`
	RecipientName    string `json:"recipient_name"`
	RecipientAddress string `gorm:"type:text" json:"recipient_address"`
	Subject          string `json:"subject"`
	Body             string `gorm:"type:text" json:"body"`

	// Page count of the last pagination, for listings
	PageCount int `gorm:"not null;default:1" json:"page_count"`
}

func (l *Letter) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

func (Letter) TableName() string {
	return "letters"
}

// Export formats
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

// GeneratedDocument records an exported PDF or DOCX kept in storage
type GeneratedDocument struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID   string  `gorm:"type:uuid;not null;index" json:"user_id"`
	LetterID string  `gorm:"type:uuid;not null;index" json:"letter_id"`
	Letter   *Letter `gorm:"foreignKey:LetterID" json:"-"`

	Format    string `gorm:"not null" json:"format"` // pdf, docx
	FileName  string `gorm:"not null" json:"file_name"`
	FilePath  string `gorm:"not null" json:"-"` // storage key
	FileSize  int64  `json:"file_size"`
	PageCount int    `json:"page_count"`
}

func (g *GeneratedDocument) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return nil
}

func (GeneratedDocument) TableName() string {
	return "generated_documents"
}

// MimeType returns the content type for the document format
func (g *GeneratedDocument) MimeType() string {
	if g.Format == FormatDOCX {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/pdf"
}
