package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ows-backend/internal/repository"
	"ows-backend/services"
	"ows-backend/utils"
)

// APIKeyGuard authenticates embed callers by X-Api-Key and checks the
// required scope.
func APIKeyGuard(keys *repository.APIKeyRepository, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		keyValue := c.GetHeader("X-Api-Key")
		if keyValue == "" {
			utils.RespondWithUnauthorized(c, "API key is required")
			c.Abort()
			return
		}

		key, err := keys.Lookup(c.Request.Context(), keyValue)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to validate API key", nil)
			c.Abort()
			return
		}
		if key == nil || !key.HasScope(scope) {
			utils.RespondWithForbidden(c, "API key does not grant access")
			c.Abort()
			return
		}

		c.Set("api_key_label", key.Label)
		c.Next()
	}
}

// HandleEmbedMedia serves the public catalog to third-party sites holding
// an API key. Same data as the public listing, but keyed so partners can be
// cut off individually.
func HandleEmbedMedia(mediaService *services.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := mediaService.ListMedia(c.Request.Context(), services.ListOptions{
			PublicOnly: true,
			MediaType:  c.Query("type"),
			Category:   c.Query("category"),
		})
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list media", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"media": views, "count": len(views)})
	}
}

// HandleEmbedShows serves upcoming shows to embed callers.
func HandleEmbedShows(content *repository.ContentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		shows, err := content.ListShows(c.Request.Context(), true)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list shows", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"shows": shows, "count": len(shows)})
	}
}

// HandleEmbedUpdates serves visible news posts to embed callers.
func HandleEmbedUpdates(content *repository.ContentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		updates, err := content.ListUpdates(c.Request.Context(), true)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list updates", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"updates": updates, "count": len(updates)})
	}
}

func SetupEmbedRoutes(router *gin.Engine, mediaService *services.MediaService, content *repository.ContentRepository, keys *repository.APIKeyRepository) {
	embed := router.Group("/embed")
	{
		embed.GET("/media", APIKeyGuard(keys, "media:read"), HandleEmbedMedia(mediaService))
		embed.GET("/shows", APIKeyGuard(keys, "shows:read"), HandleEmbedShows(content))
		embed.GET("/updates", APIKeyGuard(keys, "updates:read"), HandleEmbedUpdates(content))
	}
}
