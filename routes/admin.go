package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ows-backend/internal/repository"
	"ows-backend/middleware"
	"ows-backend/utils"
)

// HandleCreateAPIKey mints an embed API key. The key value is only shown in
// this response.
func HandleCreateAPIKey(keys *repository.APIKeyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Label  string   `json:"label" binding:"required"`
			Scopes []string `json:"scopes" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}

		key, err := keys.Create(c.Request.Context(), req.Label, req.Scopes, middleware.GetUserID(c))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create API key", nil)
			return
		}
		c.JSON(http.StatusCreated, key)
	}
}

func HandleListAPIKeys(keys *repository.APIKeyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := keys.List(c.Request.Context())
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list API keys", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"keys": list, "count": len(list)})
	}
}

func HandleRevokeAPIKey(keys *repository.APIKeyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		revoked, err := keys.Revoke(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to revoke API key", nil)
			return
		}
		if !revoked {
			utils.RespondWithNotFound(c, "API key not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "API key revoked"})
	}
}

func SetupAdminRoutes(router *gin.Engine, keys *repository.APIKeyRepository, auth *middleware.AuthMiddleware, roles *middleware.RoleMiddleware) {
	admin := router.Group("/admin")
	admin.Use(auth.RequireAuth(), roles.ManagerGuard())
	{
		admin.POST("/api-keys", HandleCreateAPIKey(keys))
		admin.GET("/api-keys", HandleListAPIKeys(keys))
		admin.DELETE("/api-keys/:id", roles.AdminGuard(), HandleRevokeAPIKey(keys))
	}
}
