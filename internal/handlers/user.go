package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yamdb/internal/middleware"
	"yamdb/internal/models"
	"yamdb/internal/services"
)

type UserHandler struct {
	users *services.UserService
	log   *zap.Logger
}

func NewUserHandler(users *services.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

type userRequest struct {
	Username  *string      `json:"username" binding:"omitempty,max=150"`
	Email     *string      `json:"email" binding:"omitempty,max=254"`
	FirstName *string      `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string      `json:"last_name" binding:"omitempty,max=150"`
	Bio       *string      `json:"bio"`
	Role      *models.Role `json:"role"`
}

func (r userRequest) input() services.UserInput {
	return services.UserInput{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
		Role:      r.Role,
	}
}

func (h *UserHandler) List(c *gin.Context) {
	page := pageFrom(c)
	users, total, err := h.users.List(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, total, newUserViews(users)))
}

func (h *UserHandler) Create(c *gin.Context) {
	var req userRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.Create(c.Request.Context(), req.input())
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, newUserView(user))
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newUserView(user))
}

func (h *UserHandler) Update(c *gin.Context) {
	var req userRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.Update(c.Request.Context(), c.Param("username"), req.input())
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newUserView(user))
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("username")); err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the caller's profile.
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.Me(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newUserView(user))
}

// UpdateMe patches the caller's profile; a role in the body is ignored.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req userRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.UpdateMe(c.Request.Context(), middleware.CallerFrom(c), req.input())
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newUserView(user))
}
