package impl

import (
	"context"
	"testing"
	"time"

	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestTaskService_CreateDefaults(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "Ada", "ada@example.com")

	task, err := env.tasks.Create(context.Background(), owner, usecase.CreateTaskInput{
		Title:       "  Write docs ",
		Description: "all of them",
	})
	require.NoError(t, err)

	assert.Equal(t, "Write docs", task.Title)
	assert.Equal(t, entity.TaskStatusTodo, task.Status)
	assert.Equal(t, entity.TaskPriorityMedium, task.Priority)
	assert.Equal(t, owner.ID, task.CreatedBy)
}

func TestTaskService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "Ada", "ada@example.com")

	tests := []struct {
		name  string
		input usecase.CreateTaskInput
	}{
		{name: "missing title", input: usecase.CreateTaskInput{Description: "d"}},
		{name: "blank description", input: usecase.CreateTaskInput{Title: "t", Description: "   "}},
		{name: "bad status", input: usecase.CreateTaskInput{Title: "t", Description: "d", Status: "later"}},
		{name: "bad priority", input: usecase.CreateTaskInput{Title: "t", Description: "d", Priority: "urgent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.tasks.Create(context.Background(), owner, tt.input)
			assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
		})
	}
}

func TestTaskService_Visibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "Ada", "ada@example.com")
	other := env.register(t, "Bob", "bob@example.com")
	admin := &entity.User{ID: uuid.New(), Role: entity.RoleAdmin}

	task, err := env.tasks.Create(ctx, owner, usecase.CreateTaskInput{Title: "mine", Description: "d"})
	require.NoError(t, err)

	_, err = env.tasks.Get(ctx, other, task.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrTaskNotFound))

	_, err = env.tasks.Update(ctx, other, task.ID, usecase.UpdateTaskInput{Title: ptr("stolen")})
	assert.True(t, errors.Is(err, domainerrors.ErrTaskNotFound))

	assert.True(t, errors.Is(env.tasks.Delete(ctx, other, task.ID), domainerrors.ErrTaskNotFound))

	got, err := env.tasks.Get(ctx, admin, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)

	_, err = env.tasks.Get(ctx, owner, uuid.New())
	assert.True(t, errors.Is(err, domainerrors.ErrTaskNotFound))
}

func TestTaskService_PartialUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "Ada", "ada@example.com")
	due := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	task, err := env.tasks.Create(ctx, owner, usecase.CreateTaskInput{Title: "t", Description: "d", DueDate: &due})
	require.NoError(t, err)

	updated, err := env.tasks.Update(ctx, owner, task.ID, usecase.UpdateTaskInput{Status: ptr("done")})
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusDone, updated.Status)
	assert.Equal(t, "t", updated.Title)
	require.NotNil(t, updated.DueDate)

	updated, err = env.tasks.Update(ctx, owner, task.ID, usecase.UpdateTaskInput{ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)

	_, err = env.tasks.Update(ctx, owner, task.ID, usecase.UpdateTaskInput{Title: ptr("  ")})
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

	require.NoError(t, env.tasks.Delete(ctx, owner, task.ID))
	_, err = env.tasks.Get(ctx, owner, task.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrTaskNotFound))
}

func TestTaskService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "Ada", "ada@example.com")
	other := env.register(t, "Bob", "bob@example.com")
	admin := &entity.User{ID: uuid.New(), Role: entity.RoleAdmin}

	for i := range 12 {
		priority := "low"
		if i%2 == 0 {
			priority = "high"
		}
		_, err := env.tasks.Create(ctx, owner, usecase.CreateTaskInput{Title: "task", Description: "d", Priority: priority})
		require.NoError(t, err)
	}
	_, err := env.tasks.Create(ctx, other, usecase.CreateTaskInput{Title: "bob's", Description: "d"})
	require.NoError(t, err)

	page, err := env.tasks.List(ctx, owner, usecase.ListTasksInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Len(t, page.Tasks, 10)

	page, err = env.tasks.List(ctx, owner, usecase.ListTasksInput{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Tasks, 2)

	page, err = env.tasks.List(ctx, owner, usecase.ListTasksInput{Priority: "high", Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(6), page.Total)
	assert.Equal(t, 100, page.Limit)

	page, err = env.tasks.List(ctx, admin, usecase.ListTasksInput{Query: "BOB"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	_, err = env.tasks.List(ctx, owner, usecase.ListTasksInput{SortBy: "password"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

	_, err = env.tasks.List(ctx, owner, usecase.ListTasksInput{SortOrder: "sideways"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}
