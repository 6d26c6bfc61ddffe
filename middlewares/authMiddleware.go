package middlewares

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/utsavrajji/FixMyArea-sub000/models"
	"github.com/utsavrajji/FixMyArea-sub000/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middlewares.
const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// AuthCookie is the cookie the login handlers store the session token in.
const AuthCookie = "auth_token"

// extractToken reads the token from "Authorization: Bearer <token>" or,
// failing that, from the auth cookie.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(AuthCookie); err == nil {
		return cookie
	}
	return ""
}

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No authorization token provided"})
			return
		}

		claims, err := utils.ParseToken(secret, tokenString)
		if err != nil {
			slog.Debug("Token validation failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization token"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// OptionalAuth sets the user when a valid token is present and lets the
// request through either way.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := extractToken(c); tokenString != "" {
			if claims, err := utils.ParseToken(secret, tokenString); err == nil {
				c.Set(UserIDKey, claims.UserID)
				c.Set(RoleKey, claims.Role)
			}
		}
		c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware. The role comes from the
// signed token, so it is re-validated on every request.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(RoleKey) != string(models.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Administrator access required"})
			return
		}
		c.Next()
	}
}
