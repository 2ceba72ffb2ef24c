package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"taskboard/config"
	"taskboard/internal/domain/entity"
	"taskboard/internal/domain/repository"
	"taskboard/internal/domain/service"
	"taskboard/internal/infra/auth"
	"taskboard/internal/infra/persistence/memory"
	"taskboard/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.SecretKey.Access = "access-secret-for-tests"
	cfg.SecretKey.Refresh = "refresh-secret-for-tests"
	cfg.Auth = config.AuthConfig{
		BcryptCost: auth.MinBcryptCost,
		Login:      config.TokenLifetimes{AccessTTL: 24 * time.Hour, RefreshTTL: 48 * time.Hour},
		Refresh:    config.TokenLifetimes{AccessTTL: 240 * time.Hour, RefreshTTL: 480 * time.Hour},
	}

	return cfg
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*service.AuthEvent
	err    error
}

func (p *recordingPublisher) PublishAuthEvent(_ context.Context, event *service.AuthEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)

	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) last() *service.AuthEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.events) == 0 {
		return nil
	}

	return p.events[len(p.events)-1]
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}

	return types
}

type testEnv struct {
	cfg       *config.Config
	store     *memory.Store
	tokens    service.TokenService
	publisher *recordingPublisher
	auth      usecase.AuthUsecase
	sessions  usecase.SessionUsecase
	tasks     usecase.TaskUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := newTestConfig()
	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	store := memory.NewStore()
	publisher := &recordingPublisher{}
	logger := newDiscardLogger()

	return &testEnv{
		cfg:       cfg,
		store:     store,
		tokens:    tokens,
		publisher: publisher,
		auth: NewAuthService(AuthServiceParams{
			UserRepo:         store.Users(),
			RefreshTokenRepo: store.RefreshTokens(),
			Hasher:           auth.NewBcryptHasher(cfg),
			TokenService:     tokens,
			Publisher:        publisher,
			Config:           cfg,
			Logger:           logger,
		}),
		sessions: NewSessionService(SessionServiceParams{
			UserRepo:         store.Users(),
			RefreshTokenRepo: store.RefreshTokens(),
			TokenService:     tokens,
			Publisher:        publisher,
			Config:           cfg,
			Logger:           logger,
		}),
		tasks: NewTaskService(TaskServiceParams{
			TaskRepo: store.Tasks(),
			Logger:   logger,
		}),
	}
}

func (env *testEnv) register(t *testing.T, name, email string) *entity.User {
	t.Helper()

	out, err := env.auth.Register(context.Background(), usecase.RegisterInput{
		Name:     name,
		Email:    email,
		Password: "correct-horse",
	})
	require.NoError(t, err)

	return out.User
}

// mockRefreshTokenRepository lets tests fail individual store calls.
type mockRefreshTokenRepository struct {
	mock.Mock
}

func (m *mockRefreshTokenRepository) Upsert(ctx context.Context, token *entity.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockRefreshTokenRepository) Rotate(ctx context.Context, userID uuid.UUID, oldHash string, next *entity.RefreshToken) error {
	return m.Called(ctx, userID, oldHash, next).Error(0)
}

func (m *mockRefreshTokenRepository) DeleteByHash(ctx context.Context, tokenHash string) (bool, error) {
	args := m.Called(ctx, tokenHash)

	return args.Bool(0), args.Error(1)
}

func (m *mockRefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	n, _ := args.Get(0).(int64)

	return n, args.Error(1)
}

func (m *mockRefreshTokenRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	n, _ := args.Get(0).(int64)

	return n, args.Error(1)
}

var _ repository.RefreshTokenRepository = (*mockRefreshTokenRepository)(nil)
