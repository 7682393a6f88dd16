package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ows-backend/middleware"
	"ows-backend/models"
	"ows-backend/services"
	"ows-backend/utils"
)

// HandleListMedia lists public media with optional type, category and
// search filters.
func HandleListMedia(mediaService *services.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := mediaService.ListMedia(c.Request.Context(), services.ListOptions{
			PublicOnly: true,
			MediaType:  c.Query("type"),
			Category:   c.Query("category"),
			Search:     c.Query("search"),
		})
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list media", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"media": views, "count": len(views)})
	}
}

// HandleListAllMedia includes hidden items; band role and up.
func HandleListAllMedia(mediaService *services.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := mediaService.ListMedia(c.Request.Context(), services.ListOptions{
			MediaType: c.Query("type"),
			Category:  c.Query("category"),
			Search:    c.Query("search"),
		})
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list media", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"media": views, "count": len(views)})
	}
}

func HandleGetMedia(mediaService *services.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := mediaService.GetMedia(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondWithPipelineError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// HandleIssueUploadTicket mints a presigned single-object upload ticket.
func HandleIssueUploadTicket(mediaService *services.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.UploadTicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}

		ticket, err := mediaService.IssueTicket(c.Request.Context(), req)
		if err != nil {
			utils.RespondWithPipelineError(c, err)
			return
		}
		c.JSON(http.StatusOK, ticket)
	}
}

// HandleIssueThumbnailTicket mints an upload ticket for a custom thumbnail
// image.
func HandleIssueThumbnailTicket(mediaService *services.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Filename    string `json:"filename" binding:"required"`
			ContentType string `json:"contentType" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}

		ticket, err := mediaService.IssueThumbnailTicket(c.Request.Context(), c.Param("id"), req.Filename, req.ContentType)
		if err != nil {
			utils.RespondWithPipelineError(c, err)
			return
		}
		c.JSON(http.StatusOK, ticket)
	}
}

// HandleCommitMedia reconciles completed uploads into a media record.
func HandleCommitMedia(mediaService *services.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CommitMediaRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}
		if len(req.Files) == 0 {
			utils.RespondWithBadRequest(c, "At least one file is required", nil)
			return
		}

		item, err := mediaService.Commit(c.Request.Context(), req, middleware.GetUserID(c))
		if err != nil {
			utils.RespondWithPipelineError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

// HandleImportFromURL downloads a remote object server-side and commits it.
func HandleImportFromURL(mediaService *services.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ImportFromURLRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}

		item, err := mediaService.ImportFromURL(c.Request.Context(), req, middleware.GetUserID(c))
		if err != nil {
			utils.RespondWithPipelineError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

func HandleUpdateMedia(mediaService *services.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.UpdateMediaRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}
		req.ID = c.Param("id")

		item, err := mediaService.Update(c.Request.Context(), req)
		if err != nil {
			utils.RespondWithPipelineError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func HandleDeleteMedia(mediaService *services.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := mediaService.Delete(c.Request.Context(), c.Param("id")); err != nil {
			utils.RespondWithPipelineError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "media deleted"})
	}
}

// SetupMediaRoutes wires the media endpoints. Listings are public; every
// mutation requires at least the band role.
func SetupMediaRoutes(router *gin.Engine, mediaService *services.MediaService, auth *middleware.AuthMiddleware, roles *middleware.RoleMiddleware) {
	public := router.Group("/media")
	{
		public.GET("", HandleListMedia(mediaService))
		public.GET("/:id", HandleGetMedia(mediaService))
	}

	protected := router.Group("/media")
	protected.Use(auth.RequireAuth())
	{
		protected.GET("/all", roles.BandGuard(), HandleListAllMedia(mediaService))
		protected.POST("/upload-url", roles.BandGuard(), HandleIssueUploadTicket(mediaService))
		protected.POST("", roles.BandGuard(), HandleCommitMedia(mediaService))
		protected.POST("/import", roles.BandGuard(), HandleImportFromURL(mediaService))
		protected.POST("/:id/thumbnail-url", roles.BandGuard(), HandleIssueThumbnailTicket(mediaService))
		protected.PUT("/:id", roles.BandGuard(), HandleUpdateMedia(mediaService))
		protected.DELETE("/:id", roles.EditorGuard(), HandleDeleteMedia(mediaService))
	}
}
