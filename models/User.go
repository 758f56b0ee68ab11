package models

import (
	"strings"

	"gorm.io/gorm"
)

// Roles assignable to application accounts. Admins manage users and roles;
// staff operate the day-to-day bakery screens.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Workspace theme identifiers selectable per user.
const (
	ThemeCounter   = "counter"
	ThemeOvenlight = "ovenlight"
	ThemeMidnight  = "midnight"

	DefaultTheme = ThemeCounter
)

// User represents an application account that can authenticate with the platform.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Name         string
	Role         string `gorm:"type:varchar(16);default:staff"`
	Theme        string `gorm:"type:varchar(32);default:counter"`
}

// IsAdmin reports whether the account can manage users and roles.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRole reports whether the provided value is a recognized role.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleStaff:
		return true
	}
	return false
}

// NormalizeRole trims the value and falls back to staff for unknown roles.
func NormalizeRole(role string) string {
	trimmed := strings.ToLower(strings.TrimSpace(role))
	if ValidRole(trimmed) {
		return trimmed
	}
	return RoleStaff
}

// ValidTheme reports whether the provided value names a known theme.
func ValidTheme(theme string) bool {
	switch theme {
	case ThemeCounter, ThemeOvenlight, ThemeMidnight:
		return true
	}
	return false
}

// NormalizeTheme returns the given theme when valid, the default otherwise.
func NormalizeTheme(theme string) string {
	trimmed := strings.TrimSpace(theme)
	if ValidTheme(trimmed) {
		return trimmed
	}
	return DefaultTheme
}
