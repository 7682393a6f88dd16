package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ows-backend/internal/repository"
	"ows-backend/middleware"
	"ows-backend/models"
	"ows-backend/utils"
)

type venueRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Website string `json:"website"`
	Info    string `json:"info"`
}

func HandleListVenues(content *repository.ContentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		venues, err := content.ListVenues(c.Request.Context())
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list venues", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"venues": venues, "count": len(venues)})
	}
}

func HandleCreateVenue(content *repository.ContentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req venueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}

		venue := &models.Venue{
			ID:      uuid.NewString(),
			Name:    req.Name,
			Address: req.Address,
			Website: req.Website,
			Info:    req.Info,
		}
		if err := content.SaveVenue(c.Request.Context(), venue); err != nil {
			utils.RespondWithInternalError(c, "Failed to save venue", nil)
			return
		}
		c.JSON(http.StatusCreated, venue)
	}
}

func HandleUpdateVenue(content *repository.ContentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		existing, err := content.GetVenue(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load venue", nil)
			return
		}
		if existing == nil {
			utils.RespondWithNotFound(c, "Venue not found")
			return
		}

		var req venueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}

		existing.Name = req.Name
		existing.Address = req.Address
		existing.Website = req.Website
		existing.Info = req.Info

		if err := content.SaveVenue(c.Request.Context(), existing); err != nil {
			utils.RespondWithInternalError(c, "Failed to save venue", nil)
			return
		}
		c.JSON(http.StatusOK, existing)
	}
}

func HandleDeleteVenue(content *repository.ContentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		deleted, err := content.DeleteVenue(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to delete venue", nil)
			return
		}
		if !deleted {
			utils.RespondWithNotFound(c, "Venue not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "venue deleted"})
	}
}

func SetupVenueRoutes(router *gin.Engine, content *repository.ContentRepository, auth *middleware.AuthMiddleware, roles *middleware.RoleMiddleware) {
	router.GET("/venues", HandleListVenues(content))

	protected := router.Group("/venues")
	protected.Use(auth.RequireAuth(), roles.BandGuard())
	{
		protected.POST("", HandleCreateVenue(content))
		protected.PUT("/:id", HandleUpdateVenue(content))
		protected.DELETE("/:id", HandleDeleteVenue(content))
	}
}
