package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ows-backend/internal/repository"
	"ows-backend/middleware"
	"ows-backend/models"
	"ows-backend/services"
	"ows-backend/utils"
)

type updateRequest struct {
	Title    string   `json:"title" binding:"required"`
	Content  string   `json:"content" binding:"required"`
	MediaIDs []string `json:"mediaIds"`
	Visible  *bool    `json:"visible"`
	Pinned   bool     `json:"pinned"`
}

// HandleListUpdates lists news posts. Anonymous callers only see visible
// ones; band members and up see drafts too.
func HandleListUpdates(content *repository.ContentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		visibleOnly := !middleware.GetRole(c).Meets(models.RoleBand)
		updates, err := content.ListUpdates(c.Request.Context(), visibleOnly)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list updates", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"updates": updates, "count": len(updates)})
	}
}

func HandleGetUpdate(content *repository.ContentRepository, mediaService *services.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		update, err := content.GetUpdate(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load update", nil)
			return
		}
		if update == nil || (!update.Visible && !middleware.GetRole(c).Meets(models.RoleBand)) {
			utils.RespondWithNotFound(c, "Update not found")
			return
		}

		media, err := mediaService.GetMediaViews(c.Request.Context(), update.MediaIDs)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to resolve update media", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"update": update, "media": media})
	}
}

func HandleCreateUpdate(content *repository.ContentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}

		visible := true
		if req.Visible != nil {
			visible = *req.Visible
		}
		update := &models.Update{
			ID:        uuid.NewString(),
			Title:     req.Title,
			Content:   req.Content,
			MediaIDs:  req.MediaIDs,
			Visible:   visible,
			Pinned:    req.Pinned,
			CreatedBy: middleware.GetUserID(c),
			CreatedAt: time.Now().UTC(),
		}
		if err := content.SaveUpdate(c.Request.Context(), update); err != nil {
			utils.RespondWithInternalError(c, "Failed to save update", nil)
			return
		}
		c.JSON(http.StatusCreated, update)
	}
}

func HandleUpdateUpdate(content *repository.ContentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		existing, err := content.GetUpdate(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load update", nil)
			return
		}
		if existing == nil {
			utils.RespondWithNotFound(c, "Update not found")
			return
		}

		var req updateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}

		existing.Title = req.Title
		existing.Content = req.Content
		existing.MediaIDs = req.MediaIDs
		if req.Visible != nil {
			existing.Visible = *req.Visible
		}
		existing.Pinned = req.Pinned

		if err := content.SaveUpdate(c.Request.Context(), existing); err != nil {
			utils.RespondWithInternalError(c, "Failed to save update", nil)
			return
		}
		c.JSON(http.StatusOK, existing)
	}
}

func HandleDeleteUpdate(content *repository.ContentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		deleted, err := content.DeleteUpdate(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to delete update", nil)
			return
		}
		if !deleted {
			utils.RespondWithNotFound(c, "Update not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "update deleted"})
	}
}

func SetupUpdateRoutes(router *gin.Engine, content *repository.ContentRepository, mediaService *services.MediaService, auth *middleware.AuthMiddleware, roles *middleware.RoleMiddleware) {
	router.GET("/updates", auth.OptionalAuth(), HandleListUpdates(content))
	router.GET("/updates/:id", auth.OptionalAuth(), HandleGetUpdate(content, mediaService))

	protected := router.Group("/updates")
	protected.Use(auth.RequireAuth(), roles.BandGuard())
	{
		protected.POST("", HandleCreateUpdate(content))
		protected.PUT("/:id", HandleUpdateUpdate(content))
		protected.DELETE("/:id", HandleDeleteUpdate(content))
	}
}
