package postgres

import (
	"context"
	"strings"
	"time"

	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/domain/repository"
	"taskboard/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// priorityRankSQL orders priorities by severity instead of alphabetically.
const priorityRankSQL = "CASE priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 WHEN 'critical' THEN 4 ELSE 0 END"

var taskSortColumns = map[string]string{
	entity.TaskSortCreatedAt: "created_at",
	entity.TaskSortUpdatedAt: "updated_at",
	entity.TaskSortDueDate:   "due_date",
	entity.TaskSortStatus:    "status",
	entity.TaskSortTitle:     "title",
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository is the constructor for taskRepository.
func NewTaskRepository(db *gorm.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) Create(ctx context.Context, task *entity.Task) error {
	taskM := fromTaskDomain(task)
	if err := repo.db.WithContext(ctx).Create(taskM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create task")
	}

	task.ID = taskM.ID
	task.CreatedAt = taskM.CreatedAt
	task.UpdatedAt = taskM.UpdatedAt

	return nil
}

func (repo *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	var taskM model.TaskModel
	err := repo.db.WithContext(ctx).Where("id = ?", id).First(&taskM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTaskNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find task")
	}

	return toTaskDomain(&taskM), nil
}

func (repo *taskRepository) Update(ctx context.Context, task *entity.Task) error {
	taskM := fromTaskDomain(task)
	taskM.UpdatedAt = time.Now()
	result := repo.db.WithContext(ctx).
		Model(&model.TaskModel{}).
		Where("id = ?", task.ID).
		Select("title", "description", "status", "priority", "due_date", "updated_at").
		Updates(taskM)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update task")
	}
	if result.RowsAffected == 0 {
		return repository.ErrTaskNotFound
	}

	task.UpdatedAt = taskM.UpdatedAt

	return nil
}

func (repo *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.TaskModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete task")
	}
	if result.RowsAffected == 0 {
		return repository.ErrTaskNotFound
	}

	return nil
}

// List applies the filter, counts all matches, then fetches one page.
func (repo *taskRepository) List(ctx context.Context, filter entity.TaskFilter) ([]*entity.Task, int64, error) {
	query := repo.db.WithContext(ctx).Model(&model.TaskModel{})

	if filter.OwnerID != nil {
		query = query.Where("created_by = ?", *filter.OwnerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", string(filter.Priority))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to count tasks")
	}

	var rows []model.TaskModel
	err := query.
		Order(taskOrderBy(filter.SortBy, filter.SortOrder)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to list tasks")
	}

	tasks := make([]*entity.Task, 0, len(rows))
	for i := range rows {
		tasks = append(tasks, toTaskDomain(&rows[i]))
	}

	return tasks, total, nil
}

func taskOrderBy(sortBy, sortOrder string) clause.OrderByColumn {
	desc := !strings.EqualFold(sortOrder, entity.SortAsc)

	if sortBy == entity.TaskSortPriority {
		return clause.OrderByColumn{
			Column: clause.Column{Name: priorityRankSQL, Raw: true},
			Desc:   desc,
		}
	}

	column, ok := taskSortColumns[sortBy]
	if !ok {
		column = "created_at"
	}

	return clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// --- Mapper Functions ---

func toTaskDomain(data *model.TaskModel) *entity.Task {
	if data == nil {
		return nil
	}

	return &entity.Task{
		ID:          data.ID,
		Title:       data.Title,
		Description: data.Description,
		Status:      entity.TaskStatus(data.Status),
		Priority:    entity.TaskPriority(data.Priority),
		DueDate:     data.DueDate,
		CreatedBy:   data.CreatedBy,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

func fromTaskDomain(data *entity.Task) *model.TaskModel {
	if data == nil {
		return nil
	}

	return &model.TaskModel{
		ID:          data.ID,
		Title:       data.Title,
		Description: data.Description,
		Status:      string(data.Status),
		Priority:    string(data.Priority),
		DueDate:     data.DueDate,
		CreatedBy:   data.CreatedBy,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
