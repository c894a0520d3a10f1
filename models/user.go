package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plan constants
const (
	PlanFree = "FREE"
	PlanPro  = "PRO"
)

// Role constants
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string     `gorm:"not null" json:"name"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	Role        string     `gorm:"not null;default:user" json:"role"` // user, admin
	Plan        string     `gorm:"not null;default:FREE" json:"plan"` // FREE, PRO
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`

	// Login throttling
	FailedLoginAttempts int        `gorm:"not null;default:0" json:"-"`
	LockoutUntil        *time.Time `json:"-"`

	// Relationships
	BrandProfiles []BrandProfile `gorm:"foreignKey:UserID" json:"-"`
	Letters       []Letter       `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Plan == "" {
		u.Plan = PlanFree
	}
	return nil
}

// IsPro reports whether the user is on the paid plan
func (u *User) IsPro() bool {
	return u.Plan == PlanPro
}

// IsLockedOut reports whether failed logins have locked the account
func (u *User) IsLockedOut() bool {
	return u.LockoutUntil != nil && time.Now().Before(*u.LockoutUntil)
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
