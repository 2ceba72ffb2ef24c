package service

import (
	"context"
	"time"
)

// Auth event types.
const (
	AuthEventUserRegistered   = "user.registered"
	AuthEventUserLoggedIn     = "user.logged_in"
	AuthEventSessionRefreshed = "session.refreshed"
	AuthEventUserLoggedOut    = "user.logged_out"
)

// AuthEvent describes a session lifecycle transition for the audit worker.
type AuthEvent struct {
	RequestID  string            `json:"request_id,omitempty"` // For distributed tracing
	EventID    string            `json:"event_id"`
	Type       string            `json:"type"`
	UserID     string            `json:"user_id,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishAuthEvent publishes an auth event for asynchronous auditing
	PublishAuthEvent(ctx context.Context, event *AuthEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
