package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"yamdb/internal/apperr"
	"yamdb/internal/models"
	"yamdb/internal/policy"
	"yamdb/internal/store"
	"yamdb/internal/utils"
)

const (
	MinScore = 1
	MaxScore = 10
)

// ReviewInput is a partial review.
type ReviewInput struct {
	Text  *string
	Score *int
}

// ReviewService manages reviews. Mutations are checked against
// policy.Discussion with the review author as owner.
type ReviewService struct {
	store *store.Store
	log   *zap.Logger
}

func NewReviewService(st *store.Store, log *zap.Logger) *ReviewService {
	return &ReviewService{store: st, log: log}
}

func (s *ReviewService) List(ctx context.Context, titleID uint, page store.Page) ([]models.Review, int64, error) {
	if err := s.store.TitleExists(ctx, titleID); err != nil {
		return nil, 0, err
	}
	return s.store.ListReviews(ctx, titleID, page)
}

func (s *ReviewService) Get(ctx context.Context, titleID, id uint) (*models.Review, error) {
	return s.store.ReviewByID(ctx, titleID, id)
}

func (s *ReviewService) Create(ctx context.Context, req policy.Request, titleID uint, in ReviewInput) (*models.Review, error) {
	if err := policy.Authorize(policy.Discussion, req); err != nil {
		return nil, err
	}
	if err := s.store.TitleExists(ctx, titleID); err != nil {
		return nil, err
	}

	ve := &apperr.ValidationError{}
	if in.Text == nil {
		ve.Add("text", "This field is required.")
	}
	if in.Score == nil {
		ve.Add("score", "This field is required.")
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	r := &models.Review{TitleID: titleID, AuthorID: req.Caller.UserID}
	if err := applyReview(r, in); err != nil {
		return nil, err
	}

	exists, err := s.store.ReviewExists(ctx, titleID, req.Caller.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errDuplicateReview()
	}

	if err := s.store.CreateReview(ctx, r); err != nil {
		return nil, conflictAsValidation(err, apperr.NonFieldErrors, duplicateReviewMessage)
	}
	s.log.Info("Review created",
		zap.Uint("review_id", r.ID), zap.Uint("title_id", titleID), zap.String("author", req.Caller.Username))
	return s.store.ReviewByID(ctx, titleID, r.ID)
}

func (s *ReviewService) Update(ctx context.Context, req policy.Request, titleID, id uint, in ReviewInput) (*models.Review, error) {
	r, err := s.authorized(ctx, req, titleID, id)
	if err != nil {
		return nil, err
	}

	before := *r
	if err := applyReview(r, in); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if r.Text != before.Text {
		fields["text"] = r.Text
	}
	if r.Score != before.Score {
		fields["score"] = r.Score
	}
	if err := s.store.UpdateReview(ctx, r, fields); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ReviewService) Delete(ctx context.Context, req policy.Request, titleID, id uint) error {
	r, err := s.authorized(ctx, req, titleID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteReview(ctx, r.ID); err != nil {
		return err
	}
	s.log.Info("Review deleted", zap.Uint("review_id", r.ID), zap.String("by", req.Caller.Username))
	return nil
}

// authorized loads the review and runs the object-level check.
func (s *ReviewService) authorized(ctx context.Context, req policy.Request, titleID, id uint) (*models.Review, error) {
	if err := policy.Authorize(policy.Discussion, req); err != nil {
		return nil, err
	}
	r, err := s.store.ReviewByID(ctx, titleID, id)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeObject(policy.Discussion, req, r.AuthorID); err != nil {
		return nil, err
	}
	return r, nil
}

func applyReview(r *models.Review, in ReviewInput) error {
	ve := &apperr.ValidationError{}
	if in.Text != nil {
		text := utils.StripHTML(*in.Text)
		if blankText(text) {
			ve.Add("text", "This field may not be blank.")
		}
		r.Text = text
	}
	if in.Score != nil {
		if *in.Score < MinScore || *in.Score > MaxScore {
			ve.Add("score", fmt.Sprintf("Ensure this value is between %d and %d.", MinScore, MaxScore))
		}
		r.Score = *in.Score
	}
	return ve.Err()
}

const duplicateReviewMessage = "You can leave only one review per title."

func errDuplicateReview() error {
	return apperr.Validation(apperr.NonFieldErrors, duplicateReviewMessage)
}

// blankText reports whether s is empty after trimming.
func blankText(s string) bool {
	return strings.TrimSpace(s) == ""
}
