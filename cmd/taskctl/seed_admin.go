package main

import (
	"context"
	"fmt"

	"taskboard/internal/infra/auth"
	"taskboard/internal/infra/persistence"
	"taskboard/internal/usecase"
	"taskboard/internal/usecase/impl"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newSeedAdminCommand() *cobra.Command {
	var input usecase.RegisterInput

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an admin account, or promote the existing account with that email",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var authUsecase usecase.AuthUsecase

			return runApp(ctx,
				func(ctx context.Context) error {
					user, created, err := authUsecase.EnsureAdmin(ctx, input)
					if err != nil {
						return err
					}

					verb := "promoted"
					if created {
						verb = "created"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "admin %s: %s (%s)\n", verb, user.Email, user.ID)

					return nil
				},
				persistence.Module,
				fx.Provide(
					auth.NewBcryptHasher,
					auth.NewJWTService,
					impl.NewAuthService,
				),
				fx.Populate(&authUsecase),
			)
		},
	}

	cmd.Flags().StringVar(&input.Email, "email", "", "Admin email address")
	cmd.Flags().StringVar(&input.Name, "name", "Administrator", "Display name for a new account")
	cmd.Flags().StringVar(&input.Password, "password", "", "Password for a new account (at least 8 characters)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
