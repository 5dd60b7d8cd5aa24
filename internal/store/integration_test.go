//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"yamdb/internal/apperr"
	"yamdb/internal/db"
	"yamdb/internal/models"
)

// setupPostgres starts a throwaway Postgres and returns a migrated store.
func setupPostgres(t *testing.T) *Store {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("yamdb"),
		postgres.WithUsername("yamdb"),
		postgres.WithPassword("yamdb"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	gdb, err := db.Open(connStr, false, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb, zap.NewNop()))
	return New(gdb)
}

func TestPostgresConstraints(t *testing.T) {
	ctx := context.Background()
	s := setupPostgres(t)

	u := &models.User{Username: "alice", Email: "alice@example.com", Password: "!x"}
	require.NoError(t, s.CreateUser(ctx, u))
	err := s.CreateUser(ctx, &models.User{Username: "alice", Email: "other@example.com", Password: "!x"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	cat := &models.Category{Name: "Books", Slug: "books"}
	require.NoError(t, s.CreateCategory(ctx, cat))
	genre := &models.Genre{Name: "Drama", Slug: "drama"}
	require.NoError(t, s.CreateGenre(ctx, genre))

	title := &models.Title{Name: "Dune", Year: 1965, CategoryID: &cat.ID}
	require.NoError(t, s.CreateTitle(ctx, title, []uint{genre.ID}))

	r := &models.Review{TitleID: title.ID, AuthorID: u.ID, Text: "great", Score: 9}
	require.NoError(t, s.CreateReview(ctx, r))
	err = s.CreateReview(ctx, &models.Review{TitleID: title.ID, AuthorID: u.ID, Text: "again", Score: 3})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	err = s.CreateReview(ctx, &models.Review{TitleID: title.ID, AuthorID: u.ID + 100, Text: "x", Score: 11})
	assert.Error(t, err, "score check and author FK reject the row")

	got, err := s.TitleByID(ctx, title.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 9.0, *got.Rating, 1e-9)
	require.Len(t, got.Genres, 1)

	require.NoError(t, s.DeleteCategory(ctx, "books"))
	got, err = s.TitleByID(ctx, title.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Category)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	_, err = s.ReviewByID(ctx, title.ID, r.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
