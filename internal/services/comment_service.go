package services

import (
	"context"

	"go.uber.org/zap"

	"yamdb/internal/apperr"
	"yamdb/internal/models"
	"yamdb/internal/policy"
	"yamdb/internal/store"
	"yamdb/internal/utils"
)

type CommentService struct {
	store *store.Store
	log   *zap.Logger
}

func NewCommentService(st *store.Store, log *zap.Logger) *CommentService {
	return &CommentService{store: st, log: log}
}

// review resolves the parent review, which must belong to titleID.
func (s *CommentService) review(ctx context.Context, titleID, reviewID uint) (*models.Review, error) {
	return s.store.ReviewByID(ctx, titleID, reviewID)
}

func (s *CommentService) List(ctx context.Context, titleID, reviewID uint, page store.Page) ([]models.Comment, int64, error) {
	r, err := s.review(ctx, titleID, reviewID)
	if err != nil {
		return nil, 0, err
	}
	return s.store.ListComments(ctx, r.ID, page)
}

func (s *CommentService) Get(ctx context.Context, titleID, reviewID, id uint) (*models.Comment, error) {
	r, err := s.review(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	return s.store.CommentByID(ctx, r.ID, id)
}

func (s *CommentService) Create(ctx context.Context, req policy.Request, titleID, reviewID uint, text *string) (*models.Comment, error) {
	if err := policy.Authorize(policy.Discussion, req); err != nil {
		return nil, err
	}
	r, err := s.review(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if text == nil {
		return nil, apperr.Validation("text", "This field is required.")
	}

	c := &models.Comment{ReviewID: r.ID, AuthorID: req.Caller.UserID}
	if err := applyComment(c, text); err != nil {
		return nil, err
	}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("Comment created", zap.Uint("comment_id", c.ID), zap.Uint("review_id", r.ID))
	return s.store.CommentByID(ctx, r.ID, c.ID)
}

func (s *CommentService) Update(ctx context.Context, req policy.Request, titleID, reviewID, id uint, text *string) (*models.Comment, error) {
	c, err := s.authorized(ctx, req, titleID, reviewID, id)
	if err != nil {
		return nil, err
	}
	if text == nil {
		return c, nil
	}
	before := c.Text
	if err := applyComment(c, text); err != nil {
		return nil, err
	}
	if c.Text == before {
		return c, nil
	}
	if err := s.store.UpdateComment(ctx, c, map[string]any{"text": c.Text}); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommentService) Delete(ctx context.Context, req policy.Request, titleID, reviewID, id uint) error {
	c, err := s.authorized(ctx, req, titleID, reviewID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteComment(ctx, c.ID); err != nil {
		return err
	}
	s.log.Info("Comment deleted", zap.Uint("comment_id", c.ID), zap.String("by", req.Caller.Username))
	return nil
}

func (s *CommentService) authorized(ctx context.Context, req policy.Request, titleID, reviewID, id uint) (*models.Comment, error) {
	if err := policy.Authorize(policy.Discussion, req); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, titleID, reviewID, id)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeObject(policy.Discussion, req, c.AuthorID); err != nil {
		return nil, err
	}
	return c, nil
}

func applyComment(c *models.Comment, text *string) error {
	t := utils.StripHTML(*text)
	if blankText(t) {
		return apperr.Validation("text", "This field may not be blank.")
	}
	c.Text = t
	return nil
}
