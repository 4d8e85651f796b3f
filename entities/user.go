package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Language string

const (
	LanguageID Language = "id"
	LanguageEN Language = "en"
)

func (l Language) Valid() bool {
	return l == LanguageID || l == LanguageEN
}

type User struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string     `gorm:"size:100;not null" json:"name"`
	Username        string     `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email           *string    `gorm:"size:255;uniqueIndex" json:"email"`
	Password        *string    `json:"-"`
	Avatar          *string    `json:"avatar"`
	GoogleID        *string    `gorm:"uniqueIndex" json:"-"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	FollowersCount  int        `gorm:"not null;default:0" json:"followers_count"`
	FollowingCount  int        `gorm:"not null;default:0" json:"following_count"`
	Language        Language   `gorm:"size:2;not null" json:"language"`

	Recipes []*Recipe `gorm:"foreignKey:UserID" json:"-"`
	Timestamp
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasPassword reports whether the account can log in with email and password.
// Accounts created through Google have no password until one is set.
func (u *User) HasPassword() bool {
	return u.Password != nil && *u.Password != ""
}

// AccessToken is one issued bearer credential. The signed token carries the
// row id, so deleting the row revokes the credential.
type AccessToken struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string     `gorm:"size:255;not null" json:"name"`
	LastUsedAt *time.Time `json:"last_used_at"`
	ExpiresAt  time.Time  `json:"expires_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
	Timestamp
}

func (t *AccessToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
