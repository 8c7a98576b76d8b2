package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shinjadong/careon-blog-ai/internal/auth"
	"github.com/shinjadong/careon-blog-ai/pkg/types"
)

// AuthMiddleware validates bearer JWTs issued to operators.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := jwtManager.VerifyToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "invalid token"})
			c.Abort()
			return
		}

		c.Set("operator", claims.Subject)
		c.Next()
	}
}

// GetOperator extracts the authenticated operator from the Gin context.
// Returns "admin" when the API runs without auth.
func GetOperator(c *gin.Context) string {
	if op, exists := c.Get("operator"); exists {
		if s, ok := op.(string); ok && s != "" {
			return s
		}
	}
	return "admin"
}
