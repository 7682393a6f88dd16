package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ows-backend/internal/repository"
	"ows-backend/middleware"
	"ows-backend/models"
	"ows-backend/utils"
)

func HandleListCategories(content *repository.ContentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := content.ListCategories(c.Request.Context())
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list categories", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": categories, "count": len(categories)})
	}
}

func HandleCreateCategory(content *repository.ContentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name string `json:"name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}

		// The id doubles as the slug used in media category filters.
		category := &models.Category{
			ID:   strings.ToLower(strings.ReplaceAll(strings.TrimSpace(req.Name), " ", "-")),
			Name: req.Name,
		}
		if err := content.SaveCategory(c.Request.Context(), category); err != nil {
			utils.RespondWithInternalError(c, "Failed to save category", nil)
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

func HandleDeleteCategory(content *repository.ContentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		deleted, err := content.DeleteCategory(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to delete category", nil)
			return
		}
		if !deleted {
			utils.RespondWithNotFound(c, "Category not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
	}
}

func SetupCategoryRoutes(router *gin.Engine, content *repository.ContentRepository, auth *middleware.AuthMiddleware, roles *middleware.RoleMiddleware) {
	router.GET("/categories", HandleListCategories(content))

	protected := router.Group("/categories")
	protected.Use(auth.RequireAuth(), roles.EditorGuard())
	{
		protected.POST("", HandleCreateCategory(content))
		protected.DELETE("/:id", HandleDeleteCategory(content))
	}
}
