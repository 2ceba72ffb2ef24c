package main

import (
	"context"
	"log/slog"

	"taskboard/config"
	"taskboard/internal/errors"
	logs "taskboard/internal/infra/log"

	"go.uber.org/fx"
)

// runApp starts a short-lived Fx app built from opts, calls run with the
// populated targets and stops the app again so every OnStop hook runs.
func runApp(ctx context.Context, run func(ctx context.Context) error, opts ...fx.Option) (err error) {
	opts = append([]fx.Option{
		fx.NopLogger,
		fx.Provide(
			config.New,
			logs.New,
		),
	}, opts...)

	app := fx.New(opts...)
	if err := app.Err(); err != nil {
		return errors.Wrap(err, "failed to build application")
	}

	if err := app.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start application")
	}
	defer func() {
		if stopErr := app.Stop(context.WithoutCancel(ctx)); stopErr != nil {
			slog.Error("Failed to stop application", slog.Any("error", stopErr))
			if err == nil {
				err = stopErr
			}
		}
	}()

	return run(ctx)
}
