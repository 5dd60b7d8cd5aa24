package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"yamdb/internal/apperr"
	"yamdb/internal/models"
	"yamdb/internal/store"
)

// CatalogService manages categories and genres.
type CatalogService struct {
	store *store.Store
	log   *zap.Logger
}

func NewCatalogService(st *store.Store, log *zap.Logger) *CatalogService {
	return &CatalogService{store: st, log: log}
}

func (s *CatalogService) ListCategories(ctx context.Context, search string, page store.Page) ([]models.Category, int64, error) {
	return s.store.ListCategories(ctx, strings.TrimSpace(search), page)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name, slug string) (*models.Category, error) {
	name, slug, err := checkNameSlug(name, slug)
	if err != nil {
		return nil, err
	}
	c := &models.Category{Name: name, Slug: slug}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, conflictAsValidation(err, "slug", "category with this slug already exists.")
	}
	s.log.Info("Category created", zap.String("slug", slug))
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, slug string) error {
	return s.store.DeleteCategory(ctx, slug)
}

func (s *CatalogService) ListGenres(ctx context.Context, search string, page store.Page) ([]models.Genre, int64, error) {
	return s.store.ListGenres(ctx, strings.TrimSpace(search), page)
}

func (s *CatalogService) CreateGenre(ctx context.Context, name, slug string) (*models.Genre, error) {
	name, slug, err := checkNameSlug(name, slug)
	if err != nil {
		return nil, err
	}
	g := &models.Genre{Name: name, Slug: slug}
	if err := s.store.CreateGenre(ctx, g); err != nil {
		return nil, conflictAsValidation(err, "slug", "genre with this slug already exists.")
	}
	s.log.Info("Genre created", zap.String("slug", slug))
	return g, nil
}

func (s *CatalogService) DeleteGenre(ctx context.Context, slug string) error {
	return s.store.DeleteGenre(ctx, slug)
}

func checkNameSlug(name, slug string) (string, string, error) {
	name = strings.TrimSpace(name)
	slug = strings.TrimSpace(slug)

	ve := &apperr.ValidationError{}
	switch {
	case name == "":
		ve.Add("name", "This field is required.")
	case utf8.RuneCountInString(name) > NameMaxLength:
		ve.Add("name", fmt.Sprintf("Ensure this field has no more than %d characters.", NameMaxLength))
	}
	switch {
	case slug == "":
		ve.Add("slug", "This field is required.")
	case len(slug) > SlugMaxLength:
		ve.Add("slug", fmt.Sprintf("Ensure this field has no more than %d characters.", SlugMaxLength))
	case !ValidSlug(slug):
		ve.Add("slug", "Enter a valid slug consisting of letters, numbers, underscores or hyphens.")
	}
	return name, slug, ve.Err()
}
