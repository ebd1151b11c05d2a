package models

import "time"

type UserType string

const (
	UserTypeVolunteer    UserType = "VOLUNTEER"
	UserTypeOrganization UserType = "ORGANIZATION"
)

func (t UserType) Valid() bool {
	return t == UserTypeVolunteer || t == UserTypeOrganization
}

type User struct {
	Base
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string   `json:"-"` // empty for OAuth-only accounts
	Name         string   `gorm:"not null" json:"name"`
	UserType     UserType `gorm:"not null;index" json:"user_type"`
	IsActive     bool     `gorm:"default:true" json:"is_active"`

	OAuthProvider string `gorm:"column:oauth_provider;index:idx_users_oauth" json:"-"`
	OAuthSubject  string `gorm:"column:oauth_subject;index:idx_users_oauth" json:"-"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}
