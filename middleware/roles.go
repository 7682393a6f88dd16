package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ows-backend/models"
	"ows-backend/utils"
)

type RoleMiddleware struct{}

func NewRoleMiddleware() *RoleMiddleware {
	return &RoleMiddleware{}
}

// RequireMinRole admits callers whose role meets the minimum. Roles are
// ordered, so a manager passes every check a band member passes.
func (r *RoleMiddleware) RequireMinRole(min models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		if !role.Meets(min) {
			utils.RespondWithError(c, http.StatusForbidden, "forbidden", "Insufficient permissions", gin.H{
				"required_role": min.String(),
				"user_role":     role.String(),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (r *RoleMiddleware) BandGuard() gin.HandlerFunc {
	return r.RequireMinRole(models.RoleBand)
}

func (r *RoleMiddleware) EditorGuard() gin.HandlerFunc {
	return r.RequireMinRole(models.RoleEditor)
}

func (r *RoleMiddleware) ManagerGuard() gin.HandlerFunc {
	return r.RequireMinRole(models.RoleManager)
}

func (r *RoleMiddleware) AdminGuard() gin.HandlerFunc {
	return r.RequireMinRole(models.RoleAdmin)
}
