package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yamdb/internal/middleware"
	"yamdb/internal/services"
)

type ReviewHandler struct {
	reviews *services.ReviewService
	log     *zap.Logger
}

func NewReviewHandler(reviews *services.ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, log: log}
}

type reviewRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

func (r reviewRequest) input() services.ReviewInput {
	return services.ReviewInput{Text: r.Text, Score: r.Score}
}

func (h *ReviewHandler) List(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	page := pageFrom(c)
	reviews, total, err := h.reviews.List(c.Request.Context(), titleID, page)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, total, newReviewViews(reviews)))
}

func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	id, ok := pathID(c, "review_id")
	if !ok {
		return
	}
	review, err := h.reviews.Get(c.Request.Context(), titleID, id)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newReviewView(review))
}

func (h *ReviewHandler) Create(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	var req reviewRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.reviews.Create(c.Request.Context(), middleware.RequestFrom(c), titleID, req.input())
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, newReviewView(review))
}

func (h *ReviewHandler) Update(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	id, ok := pathID(c, "review_id")
	if !ok {
		return
	}
	var req reviewRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.reviews.Update(c.Request.Context(), middleware.RequestFrom(c), titleID, id, req.input())
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newReviewView(review))
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	id, ok := pathID(c, "review_id")
	if !ok {
		return
	}
	if err := h.reviews.Delete(c.Request.Context(), middleware.RequestFrom(c), titleID, id); err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
