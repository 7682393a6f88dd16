package middleware

import (
	"github.com/gin-gonic/gin"

	"ows-backend/internal/config"
	"ows-backend/models"
	"ows-backend/utils"
)

type AuthMiddleware struct {
	config *config.Config
}

func NewAuthMiddleware(cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{config: cfg}
}

// RequireAuth validates the bearer token (or access_token cookie) and loads
// the caller's identity and role into the request context.
func (a *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := utils.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			utils.RespondWithUnauthorized(c, "Authentication token is required")
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(tokenString, a.config.JWTSecret)
		if err != nil {
			utils.RespondWithUnauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID())
		c.Set("email", claims.Email)
		c.Set("groups", claims.Groups)
		c.Set("role", models.HighestRole(claims.Groups))

		c.Next()
	}
}

// OptionalAuth loads identity when a valid token is present but lets
// anonymous requests through as guests. Public listings use it to decide
// whether hidden items are visible.
func (a *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := utils.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString != "" {
			if claims, err := utils.ValidateJWT(tokenString, a.config.JWTSecret); err == nil {
				c.Set("user_id", claims.UserID())
				c.Set("email", claims.Email)
				c.Set("groups", claims.Groups)
				c.Set("role", models.HighestRole(claims.Groups))
			}
		}

		c.Next()
	}
}

// GetUserID retrieves the authenticated user id from context.
func GetUserID(c *gin.Context) string {
	if id, exists := c.Get("user_id"); exists {
		if str, ok := id.(string); ok {
			return str
		}
	}
	return ""
}

// GetRole retrieves the caller's resolved role, RoleGuest when unset.
func GetRole(c *gin.Context) models.Role {
	if v, exists := c.Get("role"); exists {
		if role, ok := v.(models.Role); ok {
			return role
		}
	}
	return models.RoleGuest
}
