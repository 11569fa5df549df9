// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole defines the privilege level of a user account.
type UserRole string

const (
	// RoleUser is the default role for registered accounts.
	RoleUser UserRole = "USER"
	// RoleAdmin grants moderation privileges.
	RoleAdmin UserRole = "ADMIN"
)

// UserStatus defines the lifecycle state of a user account.
type UserStatus string

const (
	// UserStatusActive indicates a usable account.
	UserStatusActive UserStatus = "ACTIVE"
	// UserStatusSuspended indicates an account disabled by moderation.
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User represents a registered account with its public profile fields.
// Identity fields (username, email, password) are set at signup; profile
// fields are mutated only through the profile-update endpoint.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Username    string         `gorm:"size:30;unique;not null" json:"username"`
	Email       string         `gorm:"size:255;unique;not null" json:"email"`
	Password    string         `gorm:"not null" json:"-"`
	DisplayName string         `gorm:"size:100" json:"display_name"`
	Bio         string         `gorm:"size:500" json:"bio"`
	About       string         `gorm:"type:text" json:"about"`
	AvatarURL   string         `json:"avatar_url"`
	Role        UserRole       `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	Status      UserStatus     `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Posts       []Post         `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}
