package handler

import (
	"net/http"

	"taskboard/internal/delivery/api/middleware"
	"taskboard/internal/delivery/api/response"
	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// TaskHandler serves the /api/task routes. Every route runs behind the session middleware.
type TaskHandler struct {
	tasks usecase.TaskUsecase
}

// NewTaskHandler is the constructor for TaskHandler.
func NewTaskHandler(tasks usecase.TaskUsecase) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// List handles GET /api/task.
func (h *TaskHandler) List(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var input usecase.ListTasksInput
	if err := c.Bind(&input); err != nil {
		return errors.WithStack(domainerrors.ErrValidationFailed.WithMessage("Invalid query parameters"))
	}

	page, err := h.tasks.List(c.Request().Context(), actor, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newTaskListResponse(page))
}

// Create handles POST /api/task.
func (h *TaskHandler) Create(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var input usecase.CreateTaskInput
	if err := c.Bind(&input); err != nil {
		return errors.WithStack(domainerrors.ErrValidationFailed.WithMessage("Invalid task input"))
	}

	task, err := h.tasks.Create(c.Request().Context(), actor, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, TaskMessageResponse{
		Message: "Task created",
		Task:    newTaskResponse(task),
	})
}

// Get handles GET /api/task/:id.
func (h *TaskHandler) Get(c echo.Context) error {
	actor, id, err := actorAndTaskID(c)
	if err != nil {
		return err
	}

	task, err := h.tasks.Get(c.Request().Context(), actor, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newTaskResponse(task))
}

// Update handles PUT /api/task/:id.
func (h *TaskHandler) Update(c echo.Context) error {
	actor, id, err := actorAndTaskID(c)
	if err != nil {
		return err
	}

	var input usecase.UpdateTaskInput
	if err := c.Bind(&input); err != nil {
		return errors.WithStack(domainerrors.ErrValidationFailed.WithMessage("Invalid task input"))
	}

	task, err := h.tasks.Update(c.Request().Context(), actor, id, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, TaskMessageResponse{
		Message: "Task updated",
		Task:    newTaskResponse(task),
	})
}

// Delete handles DELETE /api/task/:id.
func (h *TaskHandler) Delete(c echo.Context) error {
	actor, id, err := actorAndTaskID(c)
	if err != nil {
		return err
	}

	if err := h.tasks.Delete(c.Request().Context(), actor, id); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, TaskMessageResponse{Message: "Task deleted"})
}

func currentUser(c echo.Context) (*entity.User, error) {
	user, ok := middleware.GetUser(c)
	if !ok {
		return nil, errors.WithStack(domainerrors.ErrUnauthorized)
	}

	return user, nil
}

func actorAndTaskID(c echo.Context) (*entity.User, uuid.UUID, error) {
	actor, err := currentUser(c)
	if err != nil {
		return nil, uuid.Nil, err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, uuid.Nil, errors.WithStack(domainerrors.ErrValidationFailed.WithMessage("id must be a valid UUID"))
	}

	return actor, id, nil
}
