package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"taskboard/internal/errors"
	"taskboard/internal/infra/persistence/postgres/migrations"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

const migrationDialect = "postgres"

// Migrator applies the embedded SQL migrations over the gorm connection pool.
type Migrator struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewMigrator is the constructor for Migrator.
func NewMigrator(db *gorm.DB, logger *slog.Logger) *Migrator {
	return &Migrator{db: db, logger: logger}
}

func (m *Migrator) prepare() error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(&gooseSlogLogger{logger: m.logger})

	return errors.Wrap(goose.SetDialect(migrationDialect), "failed to set migration dialect")
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.prepare(); err != nil {
		return err
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	return errors.Wrap(goose.UpContext(ctx, sqlDB, "."), "failed to apply migrations")
}

// Down rolls back the most recent migration.
func (m *Migrator) Down(ctx context.Context) error {
	if err := m.prepare(); err != nil {
		return err
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	return errors.Wrap(goose.DownContext(ctx, sqlDB, "."), "failed to roll back migration")
}

// Status logs the applied state of every migration.
func (m *Migrator) Status(ctx context.Context) error {
	if err := m.prepare(); err != nil {
		return err
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	return errors.Wrap(goose.StatusContext(ctx, sqlDB, "."), "failed to read migration status")
}

// gooseSlogLogger routes goose output through slog.
type gooseSlogLogger struct {
	logger *slog.Logger
}

func (l *gooseSlogLogger) Printf(format string, v ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "goose"))
}

func (l *gooseSlogLogger) Fatalf(format string, v ...any) {
	if l.logger != nil {
		l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "goose"))
	}
	os.Exit(1)
}

// Reset rolls back every applied migration.
func (m *Migrator) Reset(ctx context.Context) error {
	if err := m.prepare(); err != nil {
		return err
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	return errors.Wrap(goose.ResetContext(ctx, sqlDB, "."), "failed to reset migrations")
}
