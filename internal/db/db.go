package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"yamdb/internal/models"
)

// Models lists every table in migration order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Category{},
		&models.Genre{},
		&models.Title{},
		&models.TitleGenre{},
		&models.Review{},
		&models.Comment{},
	}
}

// Config returns the gorm settings shared by the server and the tests.
// TranslateError turns driver unique violations into gorm.ErrDuplicatedKey.
// SQL logs go through log; lookups that miss are expected and stay quiet.
func Config(debug bool, log *zap.Logger) *gorm.Config {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(zap.NewStdLog(log.Named("gorm")), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

// Open connects to Postgres.
func Open(dsn string, debug bool, log *zap.Logger) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), Config(debug, log))
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info("Database connection established")
	return gdb, nil
}

// Migrate creates or updates every table, index and FK constraint.
func Migrate(gdb *gorm.DB, log *zap.Logger) error {
	if err := gdb.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	log.Info("Database migration completed")
	return nil
}
