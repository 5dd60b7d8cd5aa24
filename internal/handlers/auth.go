package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yamdb/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
	log  *zap.Logger
}

func NewAuthHandler(auth *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

type signupRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"required,email,max=254"`
}

// Signup registers a user, or re-sends a code for a known username/email pair.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), req.Username, req.Email)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, signupView{Username: user.Username, Email: user.Email})
}

type tokenRequest struct {
	Username         string `json:"username" binding:"required,max=150"`
	ConfirmationCode string `json:"confirmation_code" binding:"required,max=10"`
}

// Token exchanges a confirmation code for an access token.
func (h *AuthHandler) Token(c *gin.Context) {
	var req tokenRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.auth.ConfirmAndIssueToken(c.Request.Context(), req.Username, req.ConfirmationCode)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
