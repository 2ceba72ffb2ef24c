package main

import (
	"context"

	"taskboard/internal/infra/persistence/postgres"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the embedded PostgreSQL schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newMigrateStepCommand("up", "Apply every pending migration", (*postgres.Migrator).Up))
	cmd.AddCommand(newMigrateDownCommand())
	cmd.AddCommand(newMigrateStepCommand("status", "Show the applied state of every migration", (*postgres.Migrator).Status))

	return cmd
}

func newMigrateDownCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration, or all of them with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			step := (*postgres.Migrator).Down
			if all {
				step = (*postgres.Migrator).Reset
			}

			return runMigration(cmd, step)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Roll back every applied migration")

	return cmd
}

func newMigrateStepCommand(use, short string, step func(*postgres.Migrator, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, step)
		},
	}
}

func runMigration(cmd *cobra.Command, step func(*postgres.Migrator, context.Context) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var migrator *postgres.Migrator

	return runApp(ctx,
		func(ctx context.Context) error {
			return step(migrator, ctx)
		},
		fx.Provide(
			postgres.New,
			postgres.NewMigrator,
		),
		fx.Populate(&migrator),
	)
}
