package repository

import (
	"context"
	"errors"

	"taskboard/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrTaskNotFound is returned when a task does not exist.
var ErrTaskNotFound = errors.New("task not found")

// TaskRepository persists tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *entity.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Task, error)
	// Update overwrites the mutable fields of an existing task.
	Update(ctx context.Context, task *entity.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns one page of tasks matching filter and the total number of matches.
	List(ctx context.Context, filter entity.TaskFilter) ([]*entity.Task, int64, error)
}
