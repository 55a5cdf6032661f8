// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User is an account. Profiles are private unless ProfilePublic is set.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"unique;not null" json:"username"`
	Email         string    `gorm:"unique;not null" json:"email"`
	Password      string    `json:"-"`
	DisplayName   string    `json:"display_name"`
	Bio           string    `json:"bio"`
	AvatarURL     string    `json:"avatar_url"`
	ProfilePublic bool      `gorm:"default:false" json:"profile_public"`
	Banned        bool      `gorm:"default:false;index" json:"banned"`
	IsModerator   bool      `gorm:"default:false" json:"is_moderator"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if u == nil {
		return "Someone"
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
