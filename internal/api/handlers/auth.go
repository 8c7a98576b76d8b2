package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shinjadong/careon-blog-ai/internal/auth"
	"github.com/shinjadong/careon-blog-ai/internal/logger"
	"github.com/shinjadong/careon-blog-ai/pkg/types"
)

// AuthHandler issues operator tokens.
type AuthHandler struct {
	jwt          *auth.JWTManager
	passwordHash string
}

func NewAuthHandler(jwt *auth.JWTManager, passwordHash string) *AuthHandler {
	return &AuthHandler{jwt: jwt, passwordHash: passwordHash}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	if err := auth.CheckPassword(h.passwordHash, req.Password); err != nil {
		authLog := logger.With("auth")
		authLog.Warn().Str("operator", req.Operator).Msg("rejected login")
		c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "invalid credentials"})
		return
	}

	token, err := h.jwt.IssueToken(req.Operator)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, types.LoginResponse{Token: token, Operator: req.Operator})
}
