package main

import (
	"github.com/spf13/cobra"

	"yamdb/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.close()
		return db.Migrate(e.db, e.log)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
