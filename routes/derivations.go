package routes

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"ows-backend/internal/config"
	"ows-backend/models"
	"ows-backend/services"
	"ows-backend/utils"
)

// WorkerTokenGuard authenticates the derivation worker. The worker is not a
// user: it presents a shared token instead of a JWT.
func WorkerTokenGuard(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Worker-Token")
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(cfg.WorkerToken)) != 1 {
			utils.RespondWithUnauthorized(c, "Invalid worker token")
			c.Abort()
			return
		}
		c.Next()
	}
}

// HandleCompleteDerivation merges a derived artifact into its media record.
func HandleCompleteDerivation(mediaService *services.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CompleteDerivationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}

		err := mediaService.CompleteDerivation(c.Request.Context(), req.MediaID, req.Kind, req.Value)
		if err != nil {
			utils.RespondWithPipelineError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "derivation applied"})
	}
}

// SetupDerivationRoutes wires the internal worker-facing endpoint.
func SetupDerivationRoutes(router *gin.Engine, mediaService *services.MediaService, cfg *config.Config) {
	internal := router.Group("/internal")
	internal.Use(WorkerTokenGuard(cfg))
	{
		internal.POST("/derivations/complete", HandleCompleteDerivation(mediaService))
	}
}
