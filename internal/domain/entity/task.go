package entity

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusBlocked    TaskStatus = "blocked"
)

// IsValid checks if the TaskStatus is a known value.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusBlocked:
		return true
	default:
		return false
	}
}

// TaskPriority ranks tasks from low to critical.
type TaskPriority string

const (
	TaskPriorityLow      TaskPriority = "low"
	TaskPriorityMedium   TaskPriority = "medium"
	TaskPriorityHigh     TaskPriority = "high"
	TaskPriorityCritical TaskPriority = "critical"
)

// IsValid checks if the TaskPriority is a known value.
func (p TaskPriority) IsValid() bool {
	return p.Rank() > 0
}

// Rank orders priorities for sorting; unknown values rank 0.
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityLow:
		return 1
	case TaskPriorityMedium:
		return 2
	case TaskPriorityHigh:
		return 3
	case TaskPriorityCritical:
		return 4
	default:
		return 0
	}
}

// Task is a unit of work owned by the user who created it.
type Task struct {
	ID          uuid.UUID
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	DueDate     *time.Time
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskFilter narrows a task listing. A nil OwnerID means every owner.
type TaskFilter struct {
	OwnerID   *uuid.UUID
	Status    TaskStatus
	Priority  TaskPriority
	Query     string
	SortBy    string
	SortOrder string
	Offset    int
	Limit     int
}

// Sortable task fields as exposed on the API.
const (
	TaskSortCreatedAt = "createdAt"
	TaskSortUpdatedAt = "updatedAt"
	TaskSortDueDate   = "dueDate"
	TaskSortPriority  = "priority"
	TaskSortStatus    = "status"
	TaskSortTitle     = "title"
)

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// IsValidTaskSortField reports whether field may be used as TaskFilter.SortBy.
func IsValidTaskSortField(field string) bool {
	switch field {
	case TaskSortCreatedAt, TaskSortUpdatedAt, TaskSortDueDate,
		TaskSortPriority, TaskSortStatus, TaskSortTitle:
		return true
	default:
		return false
	}
}
