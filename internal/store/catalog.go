package store

import (
	"context"

	"gorm.io/gorm"

	"yamdb/internal/models"
)

// categories and genres share a shape and lookup rules.
type slugged interface {
	models.Category | models.Genre
}

func createSlugged[T slugged](ctx context.Context, db *gorm.DB, v *T, what string) error {
	return translateError(db.WithContext(ctx).Create(v).Error, what)
}

func listSlugged[T slugged](ctx context.Context, db *gorm.DB, search string, page Page, what string) ([]T, int64, error) {
	q := db.WithContext(ctx).Model(new(T))
	if search != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", contains(search))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, what)
	}

	var out []T
	if err := page.apply(q.Order("name ASC, id ASC")).Find(&out).Error; err != nil {
		return nil, 0, translateError(err, what)
	}
	return out, total, nil
}

func bySlug[T slugged](ctx context.Context, db *gorm.DB, slug, what string) (*T, error) {
	var v T
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&v).Error; err != nil {
		return nil, translateError(err, what)
	}
	return &v, nil
}

func deleteBySlug[T slugged](ctx context.Context, db *gorm.DB, slug, what string) error {
	res := db.WithContext(ctx).Where("slug = ?", slug).Delete(new(T))
	if res.Error != nil {
		return translateError(res.Error, what)
	}
	if res.RowsAffected == 0 {
		return translateError(gormNotFound, what)
	}
	return nil
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	return createSlugged(ctx, s.db, c, "category")
}

func (s *Store) ListCategories(ctx context.Context, search string, page Page) ([]models.Category, int64, error) {
	return listSlugged[models.Category](ctx, s.db, search, page, "categories")
}

func (s *Store) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return bySlug[models.Category](ctx, s.db, slug, "category")
}

// DeleteCategory leaves its titles without a category.
func (s *Store) DeleteCategory(ctx context.Context, slug string) error {
	return deleteBySlug[models.Category](ctx, s.db, slug, "category")
}

func (s *Store) CreateGenre(ctx context.Context, g *models.Genre) error {
	return createSlugged(ctx, s.db, g, "genre")
}

func (s *Store) ListGenres(ctx context.Context, search string, page Page) ([]models.Genre, int64, error) {
	return listSlugged[models.Genre](ctx, s.db, search, page, "genres")
}

func (s *Store) GenreBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	return bySlug[models.Genre](ctx, s.db, slug, "genre")
}

// GenresBySlugs returns the genres found, in no particular order. Callers
// compare lengths to detect unknown slugs.
func (s *Store) GenresBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var genres []models.Genre
	if err := s.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&genres).Error; err != nil {
		return nil, translateError(err, "genres")
	}
	return genres, nil
}

// DeleteGenre drops the genre and its title links.
func (s *Store) DeleteGenre(ctx context.Context, slug string) error {
	return deleteBySlug[models.Genre](ctx, s.db, slug, "genre")
}
