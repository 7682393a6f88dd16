package utils

import (
	"errors"
	"net/http"

	"ows-backend/services"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	ErrorCode string      `json:"error_code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// RespondWithError sends a standardized error response
func RespondWithError(c *gin.Context, statusCode int, errorCode, message string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
		Details:   details,
	})
}

// RespondWithBadRequest sends a 400 Bad Request error
func RespondWithBadRequest(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, "bad_request", message, details)
}

// RespondWithUnauthorized sends a 401 Unauthorized error
func RespondWithUnauthorized(c *gin.Context, message string) {
	RespondWithError(c, http.StatusUnauthorized, "unauthorized", message, nil)
}

// RespondWithForbidden sends a 403 Forbidden error
func RespondWithForbidden(c *gin.Context, message string) {
	RespondWithError(c, http.StatusForbidden, "forbidden", message, nil)
}

// RespondWithNotFound sends a 404 Not Found error
func RespondWithNotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, "not_found", message, nil)
}

// RespondWithInternalError sends a 500 Internal Server Error
func RespondWithInternalError(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusInternalServerError, "internal_error", message, details)
}

// RespondWithPipelineError maps a media-pipeline error to its HTTP shape.
// Transient conditions carry enough detail for the caller to retry precisely
// (IncompleteUpload lists the missing keys).
func RespondWithPipelineError(c *gin.Context, err error) {
	var incomplete *services.IncompleteUploadError
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		RespondWithForbidden(c, "Insufficient role for media mutation")
	case errors.Is(err, services.ErrInvalidContentType):
		RespondWithError(c, http.StatusBadRequest, "invalid_content_type",
			"Declared content type does not match the media type family", nil)
	case errors.Is(err, services.ErrInvalidThumbnailSelection):
		RespondWithError(c, http.StatusBadRequest, "invalid_thumbnail_selection",
			"Thumbnails must reference an image file in the group", nil)
	case errors.Is(err, services.ErrCapacityExceeded):
		RespondWithError(c, http.StatusConflict, "capacity_exceeded",
			"The media item is at its file cap; remove a file before adding another", nil)
	case errors.Is(err, services.ErrUnresolvedThumbnail):
		RespondWithError(c, http.StatusUnprocessableEntity, "unresolved_thumbnail",
			"Multi-file items need an image file or an explicit thumbnail selection", nil)
	case errors.As(err, &incomplete):
		RespondWithError(c, http.StatusConflict, "incomplete_upload",
			"Some declared files are missing from storage; retry only those uploads",
			gin.H{"missing": incomplete.Missing})
	case errors.Is(err, services.ErrNotFound):
		RespondWithNotFound(c, "Media not found")
	case errors.Is(err, services.ErrAlreadyResolved):
		RespondWithError(c, http.StatusConflict, "already_resolved",
			"The thumbnail was already resolved by an explicit selection", nil)
	default:
		RespondWithInternalError(c, "Unexpected error", gin.H{"error": err.Error()})
	}
}
