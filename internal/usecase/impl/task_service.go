package impl

import (
	"context"
	"log/slog"
	"strings"

	"taskboard/internal/delivery/api/validator"
	deliverycontext "taskboard/internal/delivery/context"
	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/domain/repository"
	"taskboard/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	defaultTaskPage  = 1
	defaultTaskLimit = 10
	maxTaskLimit     = 100
)

type taskService struct {
	taskRepo  repository.TaskRepository
	validator *validator.Validator
	logger    *slog.Logger
}

// TaskServiceParams holds dependencies for TaskService, injected by Fx.
type TaskServiceParams struct {
	fx.In

	TaskRepo repository.TaskRepository
	Logger   *slog.Logger
}

// NewTaskService is the constructor for taskService.
func NewTaskService(params TaskServiceParams) usecase.TaskUsecase {
	return &taskService{
		taskRepo:  params.TaskRepo,
		validator: validator.New(),
		logger:    params.Logger,
	}
}

func (srv *taskService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.Logger(ctx, srv.logger)
}

func (srv *taskService) Create(ctx context.Context, actor *entity.User, input usecase.CreateTaskInput) (*entity.Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if err := srv.validator.Validate(&input); err != nil {
		return nil, err
	}

	task := &entity.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      entity.TaskStatusTodo,
		Priority:    entity.TaskPriorityMedium,
		DueDate:     input.DueDate,
		CreatedBy:   actor.ID,
	}
	if input.Status != "" {
		task.Status = entity.TaskStatus(input.Status)
	}
	if input.Priority != "" {
		task.Priority = entity.TaskPriority(input.Priority)
	}

	if err := srv.taskRepo.Create(ctx, task); err != nil {
		return nil, errors.Wrap(err, "failed to create task")
	}

	srv.log(ctx).Debug("Task created", slog.Any("taskID", task.ID))

	return task, nil
}

func (srv *taskService) Get(ctx context.Context, actor *entity.User, id uuid.UUID) (*entity.Task, error) {
	return srv.findVisible(ctx, actor, id)
}

func (srv *taskService) Update(ctx context.Context, actor *entity.User, id uuid.UUID, input usecase.UpdateTaskInput) (*entity.Task, error) {
	if err := srv.validator.Validate(&input); err != nil {
		return nil, err
	}

	task, err := srv.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, domainerrors.ErrValidationFailed.WithMessage("title must not be empty")
		}
		task.Title = title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, domainerrors.ErrValidationFailed.WithMessage("description must not be empty")
		}
		task.Description = description
	}
	if input.Status != nil {
		task.Status = entity.TaskStatus(*input.Status)
	}
	if input.Priority != nil {
		task.Priority = entity.TaskPriority(*input.Priority)
	}
	switch {
	case input.ClearDueDate:
		task.DueDate = nil
	case input.DueDate != nil:
		task.DueDate = input.DueDate
	}

	if err := srv.taskRepo.Update(ctx, task); err != nil {
		return nil, srv.mapTaskError(err, "failed to update task")
	}

	return task, nil
}

func (srv *taskService) Delete(ctx context.Context, actor *entity.User, id uuid.UUID) error {
	if _, err := srv.findVisible(ctx, actor, id); err != nil {
		return err
	}

	if err := srv.taskRepo.Delete(ctx, id); err != nil {
		return srv.mapTaskError(err, "failed to delete task")
	}

	srv.log(ctx).Debug("Task deleted", slog.Any("taskID", id))

	return nil
}

func (srv *taskService) List(ctx context.Context, actor *entity.User, input usecase.ListTasksInput) (*usecase.TaskPage, error) {
	if err := srv.validator.Validate(&input); err != nil {
		return nil, err
	}

	page := input.Page
	if page < 1 {
		page = defaultTaskPage
	}
	limit := input.Limit
	if limit < 1 {
		limit = defaultTaskLimit
	}
	limit = min(limit, maxTaskLimit)

	sortBy := input.SortBy
	if sortBy == "" {
		sortBy = entity.TaskSortCreatedAt
	}
	sortOrder := input.SortOrder
	if sortOrder == "" {
		sortOrder = entity.SortDesc
	}

	filter := entity.TaskFilter{
		Status:    entity.TaskStatus(input.Status),
		Priority:  entity.TaskPriority(input.Priority),
		Query:     input.Query,
		SortBy:    sortBy,
		SortOrder: sortOrder,
		Offset:    (page - 1) * limit,
		Limit:     limit,
	}
	if !actor.IsAdmin() {
		filter.OwnerID = &actor.ID
	}

	tasks, total, err := srv.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tasks")
	}

	return &usecase.TaskPage{
		Total: total,
		Page:  page,
		Limit: limit,
		Tasks: tasks,
	}, nil
}

// findVisible loads a task the actor may see. Another user's task is reported
// as not found so that its existence does not leak.
func (srv *taskService) findVisible(ctx context.Context, actor *entity.User, id uuid.UUID) (*entity.Task, error) {
	task, err := srv.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, srv.mapTaskError(err, "failed to find task")
	}

	if !actor.IsAdmin() && task.CreatedBy != actor.ID {
		return nil, errors.Wrap(domainerrors.ErrTaskNotFound, "task belongs to another user")
	}

	return task, nil
}

func (srv *taskService) mapTaskError(err error, message string) error {
	if errors.Is(err, repository.ErrTaskNotFound) {
		return errors.Wrap(domainerrors.ErrTaskNotFound, message)
	}

	return errors.Wrap(err, message)
}
