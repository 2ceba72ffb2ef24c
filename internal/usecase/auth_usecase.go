// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"taskboard/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new user.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// --- Output DTOs ---

// RegisterOutput returns the newly created user's basic information.
type RegisterOutput struct {
	User *entity.User
}

// Session is a freshly issued token pair and the user it belongs to.
// The TTLs are the cookie lifetimes.
type Session struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// LoginOutput returns the generated tokens after a successful login.
type LoginOutput struct {
	Session
}

// AuthUsecase defines the interface for account creation and credential login.
type AuthUsecase interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)
	// EnsureAdmin creates an admin account, or promotes the existing account with that email.
	// created reports whether a new account was made.
	EnsureAdmin(ctx context.Context, input RegisterInput) (user *entity.User, created bool, err error)
}
