package services

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"yamdb/internal/store"
	"yamdb/internal/testutil"
)

type mockCodeSender struct {
	mock.Mock
}

func (m *mockCodeSender) SendConfirmationCode(email, username, code string) {
	m.Called(email, username, code)
}

// seqSource replays digits in order, wrapping around.
type seqSource struct {
	digits []int
	i      int
}

func (s *seqSource) Intn(n int) int {
	d := s.digits[s.i%len(s.digits)] % n
	s.i++
	return d
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(testutil.NewDB(t))
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// insertBeforeCreate runs insert once, inside the transaction of the first
// INSERT of a *T, after every service-level check has already passed.
func insertBeforeCreate[T any](t *testing.T, gdb *gorm.DB, insert func(tx *gorm.DB, row *T) error) {
	t.Helper()
	fired := false
	err := gdb.Callback().Create().Before("gorm:create").Register("test:concurrent_insert", func(tx *gorm.DB) {
		row, ok := tx.Statement.Dest.(*T)
		if !ok || fired {
			return
		}
		fired = true
		if err := insert(tx.Session(&gorm.Session{NewDB: true}), row); err != nil {
			_ = tx.AddError(err)
		}
	})
	require.NoError(t, err)
}
