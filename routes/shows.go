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

type showRequest struct {
	Date             string   `json:"date" binding:"required"`
	VenueID          string   `json:"venueId"`
	Title            string   `json:"title" binding:"required"`
	Description      string   `json:"description"`
	MediaIDs         []string `json:"mediaIds"`
	ThumbnailMediaID string   `json:"thumbnailMediaId"`
}

func HandleListShows(content *repository.ContentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		upcomingOnly := c.Query("upcoming") == "true"
		shows, err := content.ListShows(c.Request.Context(), upcomingOnly)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list shows", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"shows": shows, "count": len(shows)})
	}
}

// HandleGetShow returns one show with its attached media resolved to
// presigned views.
func HandleGetShow(content *repository.ContentRepository, mediaService *services.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		show, err := content.GetShow(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load show", nil)
			return
		}
		if show == nil {
			utils.RespondWithNotFound(c, "Show not found")
			return
		}

		media, err := mediaService.GetMediaViews(c.Request.Context(), show.MediaIDs)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to resolve show media", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"show": show, "media": media})
	}
}

func HandleCreateShow(content *repository.ContentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req showRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			utils.RespondWithBadRequest(c, "Date must be YYYY-MM-DD", nil)
			return
		}

		show := &models.Show{
			ID:               uuid.NewString(),
			Date:             req.Date,
			VenueID:          req.VenueID,
			Title:            req.Title,
			Description:      req.Description,
			MediaIDs:         req.MediaIDs,
			ThumbnailMediaID: req.ThumbnailMediaID,
			CreatedBy:        middleware.GetUserID(c),
			CreatedAt:        time.Now().UTC(),
		}
		if err := content.SaveShow(c.Request.Context(), show); err != nil {
			utils.RespondWithInternalError(c, "Failed to save show", nil)
			return
		}
		c.JSON(http.StatusCreated, show)
	}
}

func HandleUpdateShow(content *repository.ContentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		existing, err := content.GetShow(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load show", nil)
			return
		}
		if existing == nil {
			utils.RespondWithNotFound(c, "Show not found")
			return
		}

		var req showRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			utils.RespondWithBadRequest(c, "Date must be YYYY-MM-DD", nil)
			return
		}

		existing.Date = req.Date
		existing.VenueID = req.VenueID
		existing.Title = req.Title
		existing.Description = req.Description
		existing.MediaIDs = req.MediaIDs
		existing.ThumbnailMediaID = req.ThumbnailMediaID

		if err := content.SaveShow(c.Request.Context(), existing); err != nil {
			utils.RespondWithInternalError(c, "Failed to save show", nil)
			return
		}
		c.JSON(http.StatusOK, existing)
	}
}

func HandleDeleteShow(content *repository.ContentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		deleted, err := content.DeleteShow(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to delete show", nil)
			return
		}
		if !deleted {
			utils.RespondWithNotFound(c, "Show not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "show deleted"})
	}
}

func SetupShowRoutes(router *gin.Engine, content *repository.ContentRepository, mediaService *services.MediaService, auth *middleware.AuthMiddleware, roles *middleware.RoleMiddleware) {
	router.GET("/shows", HandleListShows(content))
	router.GET("/shows/:id", HandleGetShow(content, mediaService))

	protected := router.Group("/shows")
	protected.Use(auth.RequireAuth(), roles.BandGuard())
	{
		protected.POST("", HandleCreateShow(content))
		protected.PUT("/:id", HandleUpdateShow(content))
		protected.DELETE("/:id", HandleDeleteShow(content))
	}
}
