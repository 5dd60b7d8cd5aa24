package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yamdb/internal/apperr"
	"yamdb/internal/store"
)

func newTitleEnv(t *testing.T) (*TitleService, *CatalogService) {
	t.Helper()
	st := newTestStore(t)
	now := func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	catalog := NewCatalogService(st, nopLogger())
	ctx := context.Background()
	_, err := catalog.CreateCategory(ctx, "Films", "films")
	require.NoError(t, err)
	_, err = catalog.CreateGenre(ctx, "Drama", "drama")
	require.NoError(t, err)
	_, err = catalog.CreateGenre(ctx, "Comedy", "comedy")
	require.NoError(t, err)
	return NewTitleService(st, now, nopLogger()), catalog
}

func TestTitleCreate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTitleEnv(t)

	title, err := svc.Create(ctx, TitleInput{
		Name:     strPtr("Fargo"),
		Year:     intPtr(1996),
		Category: strPtr("films"),
		Genres:   []string{"drama", "comedy"},
	})
	require.NoError(t, err)
	require.NotNil(t, title.Category)
	assert.Equal(t, "films", title.Category.Slug)
	assert.Len(t, title.Genres, 2)
	assert.Nil(t, title.Rating)

	_, err = svc.Create(ctx, TitleInput{Name: strPtr("Future"), Year: intPtr(2025)})
	assert.Contains(t, validationFields(t, err), "year")

	_, err = svc.Create(ctx, TitleInput{Name: strPtr("Now"), Year: intPtr(2024)})
	require.NoError(t, err, "current year is allowed")

	_, err = svc.Create(ctx, TitleInput{Name: strPtr("X"), Year: intPtr(2000), Category: strPtr("nope"), Genres: []string{"drama", "nope"}})
	fields := validationFields(t, err)
	assert.Contains(t, fields, "category")
	assert.Contains(t, fields, "genre")

	_, err = svc.Create(ctx, TitleInput{Year: intPtr(2000)})
	assert.Contains(t, validationFields(t, err), "name")
}

func TestTitleUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTitleEnv(t)
	title, err := svc.Create(ctx, TitleInput{Name: strPtr("Fargo"), Year: intPtr(1996), Category: strPtr("films"), Genres: []string{"drama"}})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, title.ID, TitleInput{Genres: []string{"comedy"}, Category: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "Fargo", updated.Name)
	assert.Nil(t, updated.Category)
	require.Len(t, updated.Genres, 1)
	assert.Equal(t, "comedy", updated.Genres[0].Slug)

	updated, err = svc.Update(ctx, title.ID, TitleInput{Description: strPtr("snow")})
	require.NoError(t, err)
	assert.Equal(t, "snow", updated.Description)
	assert.Len(t, updated.Genres, 1)

	_, err = svc.Update(ctx, title.ID, TitleInput{Year: intPtr(3000)})
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.Update(ctx, 999, TitleInput{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTitleListFilters(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTitleEnv(t)
	_, err := svc.Create(ctx, TitleInput{Name: strPtr("Fargo"), Year: intPtr(1996), Category: strPtr("films"), Genres: []string{"drama"}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, TitleInput{Name: strPtr("Airplane!"), Year: intPtr(1980), Genres: []string{"comedy"}})
	require.NoError(t, err)

	titles, total, err := svc.List(ctx, TitleQuery{Genre: "comedy"}, store.NewPage(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Airplane!", titles[0].Name)

	titles, _, err = svc.List(ctx, TitleQuery{Category: "films", Year: 1996}, store.NewPage(1, 10))
	require.NoError(t, err)
	assert.Len(t, titles, 1)

	_, _, err = svc.List(ctx, TitleQuery{Genre: "western"}, store.NewPage(1, 10))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, _, err = svc.List(ctx, TitleQuery{Category: "music"}, store.NewPage(1, 10))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
