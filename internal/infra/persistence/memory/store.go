// Package memory provides mutex-guarded in-process repositories.
// They back the "memory" store driver and the usecase tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"taskboard/internal/domain/entity"
	"taskboard/internal/domain/repository"

	"github.com/google/uuid"
)

// Store holds every table. One lock keeps the repositories consistent with each other.
type Store struct {
	mu            sync.RWMutex
	now           func() time.Time
	users         map[uuid.UUID]*entity.User
	emails        map[string]uuid.UUID
	refreshTokens map[uuid.UUID]*entity.RefreshToken
	tasks         map[uuid.UUID]*entity.Task
	auditLogs     map[string]*entity.AuditLog
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		now:           time.Now,
		users:         make(map[uuid.UUID]*entity.User),
		emails:        make(map[string]uuid.UUID),
		refreshTokens: make(map[uuid.UUID]*entity.RefreshToken),
		tasks:         make(map[uuid.UUID]*entity.Task),
		auditLogs:     make(map[string]*entity.AuditLog),
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() repository.UserRepository { return &userRepository{s} }

// RefreshTokens returns the refresh token repository view of the store.
func (s *Store) RefreshTokens() repository.RefreshTokenRepository { return &refreshTokenRepository{s} }

// Tasks returns the task repository view of the store.
func (s *Store) Tasks() repository.TaskRepository { return &taskRepository{s} }

// AuditLogs returns the audit log repository view of the store.
func (s *Store) AuditLogs() repository.AuditLogRepository { return &auditLogRepository{s} }

// --- users ---

type userRepository struct{ s *Store }

func (r *userRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user

	return &clone, nil
}

func (r *userRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[entity.NormalizeEmail(email)]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *r.s.users[id]

	return &clone, nil
}

func (r *userRepository) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := entity.NormalizeEmail(user.Email)
	if _, taken := r.s.emails[email]; taken {
		return repository.ErrEmailTaken
	}

	now := r.s.now()
	user.ID = uuid.New()
	user.Email = email
	if user.Role == "" {
		user.Role = entity.RoleUser
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	clone := *user
	r.s.users[user.ID] = &clone
	r.s.emails[email] = user.ID

	return nil
}

func (r *userRepository) UpdateRole(_ context.Context, id uuid.UUID, role entity.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.Role = role
	user.UpdatedAt = r.s.now()

	return nil
}

func (r *userRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.s.users)), nil
}

// --- refresh tokens ---

// RefreshTokenOf returns a copy of the record held for userID.
func (s *Store) RefreshTokenOf(userID uuid.UUID) (entity.RefreshToken, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.refreshTokens[userID]
	if !ok {
		return entity.RefreshToken{}, false
	}

	return *token, true
}

type refreshTokenRepository struct{ s *Store }

func (r *refreshTokenRepository) Upsert(_ context.Context, token *entity.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	if existing, ok := r.s.refreshTokens[token.UserID]; ok {
		existing.TokenHash = token.TokenHash
		existing.ExpiresAt = token.ExpiresAt
		existing.UpdatedAt = now
		*token = *existing

		return nil
	}

	token.ID = uuid.New()
	token.CreatedAt = now
	token.UpdatedAt = now
	clone := *token
	r.s.refreshTokens[token.UserID] = &clone

	return nil
}

func (r *refreshTokenRepository) Rotate(_ context.Context, userID uuid.UUID, oldHash string, next *entity.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.refreshTokens[userID]
	if !ok || existing.TokenHash != oldHash {
		return repository.ErrRefreshTokenNotFound
	}

	existing.TokenHash = next.TokenHash
	existing.ExpiresAt = next.ExpiresAt
	existing.UpdatedAt = r.s.now()
	*next = *existing

	return nil
}

func (r *refreshTokenRepository) DeleteByHash(_ context.Context, tokenHash string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for userID, token := range r.s.refreshTokens {
		if token.TokenHash == tokenHash {
			delete(r.s.refreshTokens, userID)

			return true, nil
		}
	}

	return false, nil
}

func (r *refreshTokenRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var removed int64
	for userID, token := range r.s.refreshTokens {
		if token.IsExpired(now) {
			delete(r.s.refreshTokens, userID)
			removed++
		}
	}

	return removed, nil
}

func (r *refreshTokenRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.s.refreshTokens)), nil
}

// --- tasks ---

type taskRepository struct{ s *Store }

func (r *taskRepository) Create(_ context.Context, task *entity.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	task.ID = uuid.New()
	task.CreatedAt = now
	task.UpdatedAt = now
	clone := *task
	r.s.tasks[task.ID] = &clone

	return nil
}

func (r *taskRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	task, ok := r.s.tasks[id]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	clone := *task

	return &clone, nil
}

func (r *taskRepository) Update(_ context.Context, task *entity.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.tasks[task.ID]
	if !ok {
		return repository.ErrTaskNotFound
	}
	existing.Title = task.Title
	existing.Description = task.Description
	existing.Status = task.Status
	existing.Priority = task.Priority
	existing.DueDate = task.DueDate
	existing.UpdatedAt = r.s.now()
	task.UpdatedAt = existing.UpdatedAt

	return nil
}

func (r *taskRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[id]; !ok {
		return repository.ErrTaskNotFound
	}
	delete(r.s.tasks, id)

	return nil
}

func (r *taskRepository) List(_ context.Context, filter entity.TaskFilter) ([]*entity.Task, int64, error) {
	r.s.mu.RLock()
	matched := make([]*entity.Task, 0, len(r.s.tasks))
	for _, task := range r.s.tasks {
		if matchesTaskFilter(task, filter) {
			clone := *task
			matched = append(matched, &clone)
		}
	}
	r.s.mu.RUnlock()

	desc := !strings.EqualFold(filter.SortOrder, entity.SortAsc)
	sort.SliceStable(matched, func(i, j int) bool {
		c := compareTasks(matched[i], matched[j], filter.SortBy)
		if c == 0 {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		if desc {
			return c > 0
		}

		return c < 0
	})

	total := int64(len(matched))
	start := min(max(filter.Offset, 0), len(matched))
	end := len(matched)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(matched))
	}

	return matched[start:end], total, nil
}

func matchesTaskFilter(task *entity.Task, filter entity.TaskFilter) bool {
	if filter.OwnerID != nil && task.CreatedBy != *filter.OwnerID {
		return false
	}
	if filter.Status != "" && task.Status != filter.Status {
		return false
	}
	if filter.Priority != "" && task.Priority != filter.Priority {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		return strings.Contains(strings.ToLower(task.Title), q) ||
			strings.Contains(strings.ToLower(task.Description), q)
	}

	return true
}

func compareTasks(a, b *entity.Task, sortBy string) int {
	switch sortBy {
	case entity.TaskSortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case entity.TaskSortDueDate:
		return compareDueDates(a.DueDate, b.DueDate)
	case entity.TaskSortPriority:
		return a.Priority.Rank() - b.Priority.Rank()
	case entity.TaskSortStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	case entity.TaskSortTitle:
		return strings.Compare(a.Title, b.Title)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// compareDueDates orders a missing due date after every set one, as PostgreSQL does for NULL.
func compareDueDates(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}

// --- audit logs ---

type auditLogRepository struct{ s *Store }

func (r *auditLogRepository) Create(_ context.Context, log *entity.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, dup := r.s.auditLogs[log.EventID]; dup {
		return repository.ErrAuditLogDuplicate
	}
	log.ID = uuid.New()
	log.CreatedAt = r.s.now()
	clone := *log
	r.s.auditLogs[log.EventID] = &clone

	return nil
}

// AuditLogCount returns the number of recorded audit logs.
func (s *Store) AuditLogCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.auditLogs)
}
