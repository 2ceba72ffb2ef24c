// Package persistence selects the repository backend configured by store.driver.
package persistence

import (
	"log/slog"

	"taskboard/config"
	"taskboard/internal/domain/constants"
	"taskboard/internal/domain/repository"
	"taskboard/internal/errors"
	"taskboard/internal/infra/persistence/memory"
	"taskboard/internal/infra/persistence/postgres"

	"go.uber.org/fx"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// Repositories exposes every repository to the Fx graph.
type Repositories struct {
	fx.Out

	UserRepo         repository.UserRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	TaskRepo         repository.TaskRepository
	AuditRepo        repository.AuditLogRepository
}

// NewRepositories opens the configured store. The memory driver keeps
// everything in process and is meant for development and tests.
func NewRepositories(params Params) (Repositories, error) {
	switch params.Config.Store.Driver {
	case constants.StoreDriverMemory:
		params.Logger.Warn("Using in-memory store, data is lost on restart")
		store := memory.NewStore()

		return Repositories{
			UserRepo:         store.Users(),
			RefreshTokenRepo: store.RefreshTokens(),
			TaskRepo:         store.Tasks(),
			AuditRepo:        store.AuditLogs(),
		}, nil

	case constants.StoreDriverPostgres:
		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lifecycle,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return Repositories{}, err
		}

		return Repositories{
			UserRepo:         postgres.NewUserRepository(db),
			RefreshTokenRepo: postgres.NewRefreshTokenRepository(db),
			TaskRepo:         postgres.NewTaskRepository(db),
			AuditRepo:        postgres.NewAuditLogRepository(db),
		}, nil

	default:
		return Repositories{}, errors.Errorf("unknown store driver: %s", params.Config.Store.Driver)
	}
}

// Module provides the repository FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewRepositories),
)
