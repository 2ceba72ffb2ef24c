// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"taskboard/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is a domain-specific error returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when the unique email constraint rejects a write.
	ErrEmailTaken = errors.New("email already registered")
)

// UserRepository defines the standard operations for user persistence.
// Implementations must enforce email uniqueness themselves.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their normalized email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new user and fills in its ID and timestamps.
	// Returns ErrEmailTaken if the email is already registered.
	Create(ctx context.Context, user *entity.User) error

	// UpdateRole changes the role of an existing user.
	UpdateRole(ctx context.Context, id uuid.UUID, role entity.Role) error

	// Count returns the number of stored users.
	Count(ctx context.Context) (int64, error)
}
