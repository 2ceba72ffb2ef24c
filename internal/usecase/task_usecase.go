package usecase

import (
	"context"
	"time"

	"taskboard/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateTaskInput defines a new task. Empty status and priority take their defaults.
type CreateTaskInput struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"required"`
	Status      string     `json:"status" validate:"omitempty,oneof=todo in_progress done blocked"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	DueDate     *time.Time `json:"dueDate"`
}

// UpdateTaskInput is a partial update; nil fields are left unchanged.
type UpdateTaskInput struct {
	Title        *string    `json:"title" validate:"omitempty,max=200"`
	Description  *string    `json:"description"`
	Status       *string    `json:"status" validate:"omitempty,oneof=todo in_progress done blocked"`
	Priority     *string    `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	DueDate      *time.Time `json:"dueDate"`
	ClearDueDate bool       `json:"clearDueDate"`
}

// ListTasksInput holds the query parameters of a task listing.
type ListTasksInput struct {
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
	Status    string `query:"status" validate:"omitempty,oneof=todo in_progress done blocked"`
	Priority  string `query:"priority" validate:"omitempty,oneof=low medium high critical"`
	Query     string `query:"q"`
	SortBy    string `query:"sortBy" validate:"omitempty,oneof=createdAt updatedAt dueDate priority status title"`
	SortOrder string `query:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

// TaskPage is one page of a listing.
type TaskPage struct {
	Total int64
	Page  int
	Limit int
	Tasks []*entity.Task
}

// TaskUsecase manages tasks on behalf of an authenticated actor.
// Non-admin actors only ever see their own tasks.
type TaskUsecase interface {
	Create(ctx context.Context, actor *entity.User, input CreateTaskInput) (*entity.Task, error)
	Get(ctx context.Context, actor *entity.User, id uuid.UUID) (*entity.Task, error)
	Update(ctx context.Context, actor *entity.User, id uuid.UUID, input UpdateTaskInput) (*entity.Task, error)
	Delete(ctx context.Context, actor *entity.User, id uuid.UUID) error
	List(ctx context.Context, actor *entity.User, input ListTasksInput) (*TaskPage, error)
}
