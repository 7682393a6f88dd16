package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ows-backend/models"
)

// AuditMiddleware records every mutating request as an audit event. Reads
// are skipped; a public band site would drown the collection otherwise.
func AuditMiddleware(auditor *models.AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			c.Next()
			return
		}

		// Capture the body for the change record, capped so a large import
		// payload cannot balloon memory.
		var bodyBytes []byte
		if c.Request.Body != nil {
			ct := c.Request.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "multipart/") {
				limited := io.LimitReader(c.Request.Body, 1<<20)
				bodyBytes, _ = io.ReadAll(limited)
				c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			}
		}

		c.Next()

		event := &models.AuditEvent{
			UserID:    GetUserID(c),
			Role:      GetRole(c).String(),
			Action:    actionForMethod(c.Request.Method),
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			RequestID: GetRequestID(c),
			Success:   c.Writer.Status() < 400,
			CreatedAt: time.Now().UTC(),
		}
		event.Resource, event.ResourceID = resourceFromPath(c.Request.URL.Path)
		if !event.Success {
			event.ErrorMessage = c.Errors.String()
		}
		if len(bodyBytes) > 0 {
			var changes map[string]interface{}
			if err := json.Unmarshal(bodyBytes, &changes); err == nil {
				event.Changes = changes
			}
		}

		auditor.LogAsync(event)
	}
}

func actionForMethod(method string) string {
	switch method {
	case "POST":
		return "CREATE"
	case "PUT", "PATCH":
		return "UPDATE"
	case "DELETE":
		return "DELETE"
	}
	return method
}

// resourceFromPath extracts "media", "shows", ... plus the id segment when
// present. Paths look like /media/{id} or /admin/api-keys/{id}.
func resourceFromPath(path string) (string, string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 {
		return "", ""
	}
	if parts[0] == "admin" || parts[0] == "internal" {
		parts = parts[1:]
	}
	if len(parts) == 0 {
		return "", ""
	}
	resource := parts[0]
	if len(parts) > 1 {
		return resource, parts[1]
	}
	return resource, ""
}
