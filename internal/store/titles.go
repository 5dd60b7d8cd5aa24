package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yamdb/internal/models"
)

// TitleFilter narrows ListTitles. Zero values are ignored.
type TitleFilter struct {
	CategoryID uint
	GenreID    uint
	Name       string
	Year       int
}

func (f TitleFilter) apply(q *gorm.DB) *gorm.DB {
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.GenreID != 0 {
		q = q.Where("id IN (?)", q.Session(&gorm.Session{NewDB: true}).
			Model(&models.TitleGenre{}).Select("title_id").Where("genre_id = ?", f.GenreID))
	}
	if f.Name != "" {
		q = q.Where("name = ?", f.Name)
	}
	if f.Year != 0 {
		q = q.Where("year = ?", f.Year)
	}
	return q
}

// ListTitles returns titles newest-first with category, genres and rating filled.
func (s *Store) ListTitles(ctx context.Context, f TitleFilter, page Page) ([]models.Title, int64, error) {
	q := f.apply(s.db.WithContext(ctx).Model(&models.Title{})).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "titles")
	}

	var titles []models.Title
	if err := page.apply(q.Preload("Category").Order("id DESC")).Find(&titles).Error; err != nil {
		return nil, 0, translateError(err, "titles")
	}
	if err := s.fillTitles(ctx, titles); err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

func (s *Store) TitleByID(ctx context.Context, id uint) (*models.Title, error) {
	var t models.Title
	if err := s.db.WithContext(ctx).Preload("Category").First(&t, id).Error; err != nil {
		return nil, translateError(err, "title")
	}
	titles := []models.Title{t}
	if err := s.fillTitles(ctx, titles); err != nil {
		return nil, err
	}
	return &titles[0], nil
}

// TitleExists returns apperr.ErrNotFound when id does not resolve.
func (s *Store) TitleExists(ctx context.Context, id uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return translateError(err, "title")
	}
	if count == 0 {
		return translateError(gormNotFound, "title")
	}
	return nil
}

// CreateTitle inserts t and links it to genreIDs in one transaction.
func (s *Store) CreateTitle(ctx context.Context, t *models.Title, genreIDs []uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if err := tx.db.Omit(clause.Associations).Create(t).Error; err != nil {
			return translateError(err, "title")
		}
		return tx.linkGenres(t.ID, genreIDs)
	})
}

// UpdateTitle applies fields. When genreIDs is non-nil the genre links are
// replaced with it.
func (s *Store) UpdateTitle(ctx context.Context, id uint, fields map[string]any, genreIDs []uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if err := tx.TitleExists(ctx, id); err != nil {
			return err
		}
		if len(fields) > 0 {
			if err := tx.db.Model(&models.Title{ID: id}).Updates(fields).Error; err != nil {
				return translateError(err, "title")
			}
		}
		if genreIDs == nil {
			return nil
		}
		if err := tx.db.Where("title_id = ?", id).Delete(&models.TitleGenre{}).Error; err != nil {
			return translateError(err, "title genres")
		}
		return tx.linkGenres(id, genreIDs)
	})
}

func (s *Store) linkGenres(titleID uint, genreIDs []uint) error {
	if len(genreIDs) == 0 {
		return nil
	}
	links := make([]models.TitleGenre, 0, len(genreIDs))
	seen := make(map[uint]bool, len(genreIDs))
	for _, gid := range genreIDs {
		if seen[gid] {
			continue
		}
		seen[gid] = true
		links = append(links, models.TitleGenre{TitleID: titleID, GenreID: gid})
	}
	err := s.db.Omit(clause.Associations).Create(&links).Error
	return translateError(err, "title genres")
}

// DeleteTitle removes the title with its reviews, comments and genre links.
func (s *Store) DeleteTitle(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Title{}, id)
	if res.Error != nil {
		return translateError(res.Error, "title")
	}
	if res.RowsAffected == 0 {
		return translateError(gormNotFound, "title")
	}
	return nil
}

// fillTitles loads genres and the average review score for each title
// with one grouped query each.
func (s *Store) fillTitles(ctx context.Context, titles []models.Title) error {
	if len(titles) == 0 {
		return nil
	}

	ids := make([]uint, len(titles))
	for i, t := range titles {
		ids[i] = t.ID
	}

	type ratingResult struct {
		TitleID uint
		Rating  float64
	}
	var ratings []ratingResult
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("title_id, CAST(AVG(score) AS FLOAT) AS rating").
		Where("title_id IN ?", ids).
		Group("title_id").
		Scan(&ratings).Error
	if err != nil {
		return translateError(err, "title ratings")
	}

	type genreResult struct {
		TitleID uint
		ID      uint
		Name    string
		Slug    string
	}
	var genres []genreResult
	err = s.db.WithContext(ctx).Table("genres").
		Select("title_genres.title_id, genres.id, genres.name, genres.slug").
		Joins("JOIN title_genres ON title_genres.genre_id = genres.id").
		Where("title_genres.title_id IN ?", ids).
		Order("genres.slug ASC").
		Scan(&genres).Error
	if err != nil {
		return translateError(err, "title genres")
	}

	ratingMap := make(map[uint]float64, len(ratings))
	for _, r := range ratings {
		ratingMap[r.TitleID] = r.Rating
	}
	genreMap := make(map[uint][]models.Genre)
	for _, g := range genres {
		genreMap[g.TitleID] = append(genreMap[g.TitleID], models.Genre{ID: g.ID, Name: g.Name, Slug: g.Slug})
	}

	for i := range titles {
		if r, ok := ratingMap[titles[i].ID]; ok {
			titles[i].Rating = &r
		}
		titles[i].Genres = genreMap[titles[i].ID]
		if titles[i].Genres == nil {
			titles[i].Genres = []models.Genre{}
		}
	}
	return nil
}
