package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"ows-backend/models"
)

func performWithRole(role models.Role, guard gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", func(c *gin.Context) {
		c.Set("role", role)
	}, guard, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRequireMinRoleOrdering(t *testing.T) {
	roles := NewRoleMiddleware()

	if w := performWithRole(models.RoleManager, roles.BandGuard()); w.Code != http.StatusOK {
		t.Fatalf("manager should pass the band guard, got %d", w.Code)
	}
	if w := performWithRole(models.RoleBand, roles.BandGuard()); w.Code != http.StatusOK {
		t.Fatalf("band should pass the band guard, got %d", w.Code)
	}
	if w := performWithRole(models.RoleGuest, roles.BandGuard()); w.Code != http.StatusForbidden {
		t.Fatalf("guest should be rejected by the band guard, got %d", w.Code)
	}
	if w := performWithRole(models.RoleEditor, roles.ManagerGuard()); w.Code != http.StatusForbidden {
		t.Fatalf("editor should be rejected by the manager guard, got %d", w.Code)
	}
	if w := performWithRole(models.RoleAdmin, roles.AdminGuard()); w.Code != http.StatusOK {
		t.Fatalf("admin should pass the admin guard, got %d", w.Code)
	}
}

func TestUnauthenticatedDefaultsToGuest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	roles := NewRoleMiddleware()
	router.GET("/protected", roles.BandGuard(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	if w.Code != http.StatusForbidden {
		t.Fatalf("missing identity should resolve to guest and be rejected, got %d", w.Code)
	}
}
