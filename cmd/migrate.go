package cmd

import (
	"fmt"

	"booking-gateway/core/config"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the bookings ledger schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			if !cfg.Database.Enabled {
				return fmt.Errorf("database.enabled is false; nothing to migrate")
			}
			return runMigrations(cmd.Context(), cfg.Database)
		},
	}
}
