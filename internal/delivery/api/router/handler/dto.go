package handler

import (
	"time"

	"taskboard/internal/domain/entity"
	"taskboard/internal/usecase"

	"github.com/google/uuid"
)

// UserResponse is the public shape of a user. The password hash never leaves the service.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newUserResponse(user *entity.User) *UserResponse {
	if user == nil {
		return nil
	}

	return &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role.String(),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// SessionResponse answers login, refresh, logout and me.
type SessionResponse struct {
	User    *UserResponse `json:"user"`
	Auth    bool          `json:"auth"`
	Message string        `json:"message,omitempty"`
}

// RegisterResponse answers a successful registration.
type RegisterResponse struct {
	Message string        `json:"message"`
	User    *UserResponse `json:"user"`
}

// TaskResponse is the public shape of a task.
type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedBy   uuid.UUID  `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func newTaskResponse(task *entity.Task) *TaskResponse {
	return &TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		CreatedBy:   task.CreatedBy,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// TaskMessageResponse pairs a task with a confirmation message.
type TaskMessageResponse struct {
	Message string        `json:"message"`
	Task    *TaskResponse `json:"task,omitempty"`
}

// TaskListResponse is one page of tasks.
type TaskListResponse struct {
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
	Tasks []*TaskResponse `json:"tasks"`
}

func newTaskListResponse(page *usecase.TaskPage) *TaskListResponse {
	tasks := make([]*TaskResponse, 0, len(page.Tasks))
	for _, task := range page.Tasks {
		tasks = append(tasks, newTaskResponse(task))
	}

	return &TaskListResponse{
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
		Tasks: tasks,
	}
}
