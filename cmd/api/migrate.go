package main

import (
	"github.com/spf13/cobra"

	"school-assistant-backend/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Connect(cmd.Context(), cfg.ConnString())
		if err != nil {
			return err
		}
		defer database.Close()

		if err := db.Migrate(cmd.Context(), database); err != nil {
			return err
		}
		logger.Info("Schema applied")
		return nil
	},
}
