package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yamdb/internal/models"
)

// ListReviews returns the reviews of a title, newest first.
func (s *Store) ListReviews(ctx context.Context, titleID uint, page Page) ([]models.Review, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Review{}).Where("title_id = ?", titleID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "reviews")
	}

	var reviews []models.Review
	err := page.apply(q.Preload("Author").Order("pub_date DESC, id DESC")).Find(&reviews).Error
	if err != nil {
		return nil, 0, translateError(err, "reviews")
	}
	return reviews, total, nil
}

// ReviewByID only matches a review that belongs to titleID.
func (s *Store) ReviewByID(ctx context.Context, titleID, id uint) (*models.Review, error) {
	var r models.Review
	err := s.db.WithContext(ctx).Preload("Author").
		Where("id = ? AND title_id = ?", id, titleID).
		First(&r).Error
	if err != nil {
		return nil, translateError(err, "review")
	}
	return &r, nil
}

// ReviewExists reports whether authorID already reviewed titleID.
func (s *Store) ReviewExists(ctx context.Context, titleID, authorID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(&count).Error
	if err != nil {
		return false, translateError(err, "review")
	}
	return count > 0, nil
}

func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(r).Error
	return translateError(err, "review")
}

// UpdateReview applies fields to r and reloads it.
func (s *Store) UpdateReview(ctx context.Context, r *models.Review, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Review{ID: r.ID}).Updates(fields).Error; err != nil {
		return translateError(err, "review")
	}
	return translateError(db.Preload("Author").First(r, r.ID).Error, "review")
}

func (s *Store) DeleteReview(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Review{}, id)
	if res.Error != nil {
		return translateError(res.Error, "review")
	}
	if res.RowsAffected == 0 {
		return translateError(gormNotFound, "review")
	}
	return nil
}
