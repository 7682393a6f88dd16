package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ows-backend/internal/config"
	"ows-backend/internal/repository"
	"ows-backend/internal/storage"
	"ows-backend/middleware"
	"ows-backend/models"
	"ows-backend/services"
	"ows-backend/utils"
)

type pressRequest struct {
	Title           string                   `json:"title" binding:"required"`
	Description     string                   `json:"description"`
	FileAttachments []models.PressAttachment `json:"fileAttachments"`
	Links           []string                 `json:"links"`
	Public          *bool                    `json:"public"`
	Pinned          bool                     `json:"pinned"`
}

// HandleListPress lists press kits with attachment URLs resolved.
func HandleListPress(content *repository.ContentRepository, store services.ObjectStore, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		kits, err := content.ListPress(c.Request.Context())
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list press kits", nil)
			return
		}

		authed := middleware.GetRole(c).Meets(models.RoleBand)
		visible := make([]*models.Press, 0, len(kits))
		for _, kit := range kits {
			if !kit.Public && !authed {
				continue
			}
			for i := range kit.FileAttachments {
				if url, err := store.PresignGet(c.Request.Context(), kit.FileAttachments[i].S3Key, cfg.PresignGetTTL); err == nil {
					kit.FileAttachments[i].URL = url
				}
			}
			visible = append(visible, kit)
		}
		c.JSON(http.StatusOK, gin.H{"press": visible, "count": len(visible)})
	}
}

// HandleIssuePressUploadTicket mints a presigned upload for a press
// attachment. Press files are documents, so any content type goes.
func HandleIssuePressUploadTicket(store services.ObjectStore, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Filename string `json:"filename" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}

		fileID := uuid.NewString()
		key := storage.PressKey(fileID, req.Filename)
		url, err := store.PresignPut(c.Request.Context(), key, cfg.TicketTTL)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create upload URL", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"uploadUrl": url,
			"s3Key":     key,
			"expiresIn": int64(cfg.TicketTTL.Seconds()),
		})
	}
}

func HandleCreatePress(content *repository.ContentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req pressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}
		for _, att := range req.FileAttachments {
			if !strings.HasPrefix(att.S3Key, "press/") {
				utils.RespondWithBadRequest(c, "Attachment keys must come from a press upload ticket", nil)
				return
			}
		}

		public := true
		if req.Public != nil {
			public = *req.Public
		}
		kit := &models.Press{
			ID:              uuid.NewString(),
			Title:           req.Title,
			Description:     req.Description,
			FileAttachments: req.FileAttachments,
			Links:           req.Links,
			Public:          public,
			Pinned:          req.Pinned,
			CreatedBy:       middleware.GetUserID(c),
			CreatedAt:       time.Now().UTC(),
		}
		if err := content.SavePress(c.Request.Context(), kit); err != nil {
			utils.RespondWithInternalError(c, "Failed to save press kit", nil)
			return
		}
		c.JSON(http.StatusCreated, kit)
	}
}

func HandleUpdatePress(content *repository.ContentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		existing, err := content.GetPress(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load press kit", nil)
			return
		}
		if existing == nil {
			utils.RespondWithNotFound(c, "Press kit not found")
			return
		}

		var req pressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}

		existing.Title = req.Title
		existing.Description = req.Description
		existing.FileAttachments = req.FileAttachments
		existing.Links = req.Links
		if req.Public != nil {
			existing.Public = *req.Public
		}
		existing.Pinned = req.Pinned

		if err := content.SavePress(c.Request.Context(), existing); err != nil {
			utils.RespondWithInternalError(c, "Failed to save press kit", nil)
			return
		}
		c.JSON(http.StatusOK, existing)
	}
}

func HandleDeletePress(content *repository.ContentRepository, store services.ObjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		kit, err := content.GetPress(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load press kit", nil)
			return
		}
		if kit == nil {
			utils.RespondWithNotFound(c, "Press kit not found")
			return
		}

		if _, err := content.DeletePress(c.Request.Context(), kit.ID); err != nil {
			utils.RespondWithInternalError(c, "Failed to delete press kit", nil)
			return
		}
		for _, att := range kit.FileAttachments {
			// Best effort; the sweep catches what this misses.
			_ = store.Delete(c.Request.Context(), att.S3Key)
		}
		c.JSON(http.StatusOK, gin.H{"message": "press kit deleted"})
	}
}

func SetupPressRoutes(router *gin.Engine, content *repository.ContentRepository, store services.ObjectStore, cfg *config.Config, auth *middleware.AuthMiddleware, roles *middleware.RoleMiddleware) {
	router.GET("/press", auth.OptionalAuth(), HandleListPress(content, store, cfg))

	protected := router.Group("/press")
	protected.Use(auth.RequireAuth(), roles.EditorGuard())
	{
		protected.POST("/upload-url", HandleIssuePressUploadTicket(store, cfg))
		protected.POST("", HandleCreatePress(content))
		protected.PUT("/:id", HandleUpdatePress(content))
		protected.DELETE("/:id", HandleDeletePress(content, store))
	}
}
