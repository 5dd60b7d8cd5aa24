package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"yamdb/internal/config"
	"yamdb/internal/db"
	"yamdb/internal/logger"
)

var debugSQL bool

var rootCmd = &cobra.Command{
	Use:   "yamdb",
	Short: "YaMDb - reviews of films, books and music",
	Long: `YaMDb collects user reviews of creative works (titles).

Commands:
  serve            - Run the HTTP API
  migrate          - Create or update the database schema
  import           - Load the seed CSV files
  createsuperuser  - Create an administrator account`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugSQL, "debug-sql", false, "Log every SQL statement")
}

// env is what every command needs before doing real work.
type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.LogLevel, cfg.Env)

	gdb, err := db.Open(cfg.DatabaseURL, debugSQL, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, db: gdb}, nil
}

func (e *env) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = e.log.Sync()
}
