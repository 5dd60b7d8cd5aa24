package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"yamdb/internal/db"
	"yamdb/internal/importer"
)

var importDir string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load the seed CSV files",
	Long: `Load users, categories, genres, titles, genre links, reviews and comments
from CSV files. Rows whose id already exists are skipped.

Examples:
  yamdb import                       # Read ./static/data
  yamdb import --dir /srv/seed       # Read another directory`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.close()

		if err := db.Migrate(e.db, e.log); err != nil {
			return err
		}
		results, err := importer.New(e.db, e.log).Run(cmd.Context(), importDir)
		if err != nil {
			return err
		}
		for _, res := range results {
			if res.Missing {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s missing\n", res.File)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s %d created, %d skipped\n", res.File, res.Created, res.Skipped)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importDir, "dir", "static/data", "Directory holding the CSV files")
	rootCmd.AddCommand(importCmd)
}
