package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/igrejaunida/backend/internal/auth"
	"github.com/igrejaunida/backend/pkg/response"
)

// JWT returns a middleware that validates the bearer token and sets the
// verified email and token ID in context. It proves who the caller is;
// tenant scope and role come from the Session middleware.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(auth.ContextEmail, claims.Email)
		c.Set(auth.ContextTokenID, claims.ID)
		c.Next()
	}
}
