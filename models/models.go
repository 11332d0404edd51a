package models

import (
	"strings"
	"time"
)

// Roles known to the admin console
const (
	RoleAdministrator = "administrator"
	RoleEditor        = "editor"
)

// User is an admin console account
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Login        string    `gorm:"uniqueIndex;size:64;not null" json:"login"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"size:32;not null;default:'editor'" json:"role"`
	TOTPSecret   string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserCreate request payload for creating a user
type UserCreate struct {
	Login      string `json:"login" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Role       string `json:"role"`
	TOTPSecret string `json:"totp_secret"`
}

// Normalize trims whitespace and applies the default role
func (u *UserCreate) Normalize() {
	u.Login = strings.TrimSpace(u.Login)
	u.Role = strings.ToLower(strings.TrimSpace(u.Role))
	u.TOTPSecret = strings.TrimSpace(u.TOTPSecret)
	if u.Role == "" {
		u.Role = RoleEditor
	}
}

// Session is a logged-in browser session
type Session struct {
	ID        string    `gorm:"primaryKey;size:64" json:"-"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
