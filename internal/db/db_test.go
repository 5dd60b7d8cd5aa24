package db

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"yamdb/internal/models"
)

func TestConfigLogsThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gdb, err := gorm.Open(sqlite.Open("file:db_config?mode=memory&cache=shared"), Config(false, zap.New(core)))
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb, zap.NewNop()))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	logs.TakeAll()

	var u models.User
	err = gdb.Where("username = ?", "nobody").First(&u).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len(), "a missing row is not worth a log line")

	require.Error(t, gdb.Exec("SELECT * FROM no_such_table").Error)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "gorm", logs.All()[0].LoggerName)
	assert.Contains(t, logs.All()[0].Message, "no_such_table")
}
