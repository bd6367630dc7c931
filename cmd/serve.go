package cmd

import (
	"context"

	"booking-gateway/core/config"
	"booking-gateway/core/database"
	"booking-gateway/core/server"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the booking HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()

			if migrateUp && cfg.Database.Enabled {
				if err := runMigrations(cmd.Context(), cfg.Database); err != nil {
					return err
				}
			}
			return server.Run(cfg)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", false, "apply ledger migrations before serving")
	return cmd
}

func runMigrations(ctx context.Context, cfg config.DatabaseConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Migrate(ctx)
}
