package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yamdb/internal/middleware"
	"yamdb/internal/services"
)

type CommentHandler struct {
	comments *services.CommentService
	log      *zap.Logger
}

func NewCommentHandler(comments *services.CommentService, log *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, log: log}
}

type commentRequest struct {
	Text *string `json:"text"`
}

// commentPath reads title_id and review_id.
func commentPath(c *gin.Context) (titleID, reviewID uint, ok bool) {
	if titleID, ok = pathID(c, "title_id"); !ok {
		return
	}
	reviewID, ok = pathID(c, "review_id")
	return
}

func (h *CommentHandler) List(c *gin.Context) {
	titleID, reviewID, ok := commentPath(c)
	if !ok {
		return
	}
	page := pageFrom(c)
	comments, total, err := h.comments.List(c.Request.Context(), titleID, reviewID, page)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, total, newCommentViews(comments)))
}

func (h *CommentHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := commentPath(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "comment_id")
	if !ok {
		return
	}
	comment, err := h.comments.Get(c.Request.Context(), titleID, reviewID, id)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newCommentView(comment))
}

func (h *CommentHandler) Create(c *gin.Context) {
	titleID, reviewID, ok := commentPath(c)
	if !ok {
		return
	}
	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), middleware.RequestFrom(c), titleID, reviewID, req.Text)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, newCommentView(comment))
}

func (h *CommentHandler) Update(c *gin.Context) {
	titleID, reviewID, ok := commentPath(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "comment_id")
	if !ok {
		return
	}
	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.comments.Update(c.Request.Context(), middleware.RequestFrom(c), titleID, reviewID, id, req.Text)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newCommentView(comment))
}

func (h *CommentHandler) Delete(c *gin.Context) {
	titleID, reviewID, ok := commentPath(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "comment_id")
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), middleware.RequestFrom(c), titleID, reviewID, id); err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
