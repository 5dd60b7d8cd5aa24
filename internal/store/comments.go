package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yamdb/internal/models"
)

// ListComments returns the comments of a review, oldest first.
func (s *Store) ListComments(ctx context.Context, reviewID uint, page Page) ([]models.Comment, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Comment{}).Where("review_id = ?", reviewID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "comments")
	}

	var comments []models.Comment
	err := page.apply(q.Preload("Author").Order("pub_date ASC, id ASC")).Find(&comments).Error
	if err != nil {
		return nil, 0, translateError(err, "comments")
	}
	return comments, total, nil
}

func (s *Store) CommentByID(ctx context.Context, reviewID, id uint) (*models.Comment, error) {
	var c models.Comment
	err := s.db.WithContext(ctx).Preload("Author").
		Where("id = ? AND review_id = ?", id, reviewID).
		First(&c).Error
	if err != nil {
		return nil, translateError(err, "comment")
	}
	return &c, nil
}

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
	return translateError(err, "comment")
}

func (s *Store) UpdateComment(ctx context.Context, c *models.Comment, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Comment{ID: c.ID}).Updates(fields).Error; err != nil {
		return translateError(err, "comment")
	}
	return translateError(db.Preload("Author").First(c, c.ID).Error, "comment")
}

func (s *Store) DeleteComment(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return translateError(res.Error, "comment")
	}
	if res.RowsAffected == 0 {
		return translateError(gormNotFound, "comment")
	}
	return nil
}
