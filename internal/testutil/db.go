// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"yamdb/internal/db"
	"yamdb/internal/models"
)

// NewDB returns a migrated in-memory SQLite database with foreign keys on.
// Each call gets its own database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)

	gdb, err := gorm.Open(sqlite.Open(dsn), db.Config(false, zap.NewNop()))
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gdb.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.Migrate(gdb, zap.NewNop()))
	return gdb
}

// CreateUser inserts a confirmed user with the given role.
func CreateUser(t *testing.T, gdb *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Username:    username,
		Email:       username + "@example.com",
		Role:        role,
		Password:    "!unusable",
		IsConfirmed: true,
	}
	require.NoError(t, gdb.Create(u).Error)
	return u
}
