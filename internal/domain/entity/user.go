// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an account that can sign in and own tasks.
type User struct {
	ID           uuid.UUID // Store-assigned identifier.
	Name         string    // Display name, at most 100 characters.
	Email        string    // Unique login identifier, always stored normalized.
	PasswordHash string    // bcrypt hash. Never leaves the service layer.
	Role         Role      // Authorization role, RoleUser unless promoted.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user may see every user's resources.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// Both the write path and the login lookup go through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
