package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/receipt-print-api/internal/presentation/http/dto/response"
	"github.com/sangkips/receipt-print-api/pkg/utils"
)

// AccessTokenQueryParam carries the token for clients that cannot set headers, such as browser WebSockets
const AccessTokenQueryParam = "access_token"

// AuthMiddleware creates a JWT authentication middleware for paired terminals
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateTerminalToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		// Set terminal info in context
		c.Set("terminal_id", claims.TerminalID)
		c.Set("terminal_name", claims.Name)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if t := c.Query(AccessTokenQueryParam); t != "" {
			return t, true
		}
		return "", false
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
