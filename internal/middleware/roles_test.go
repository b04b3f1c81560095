package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/dmwangi/soko-api/internal/models"
)

func adminRouter(reached *bool, preset func(*gin.Context)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if preset != nil {
		router.Use(preset)
	}
	router.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		*reached = true
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestRequireRole_NoRoleInContext(t *testing.T) {
	var reached bool
	router := adminRouter(&reached, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status %d, got %d", http.StatusForbidden, w.Code)
	}
	if reached {
		t.Error("Handler must not run without a role")
	}
}

func TestRequireRole_WrongRole(t *testing.T) {
	for _, role := range []models.Role{models.RoleBuyer, models.RoleSeller} {
		var reached bool
		router := adminRouter(&reached, func(c *gin.Context) {
			c.Set(CtxUserRole, role)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))

		if w.Code != http.StatusForbidden {
			t.Errorf("Role %q: expected status %d, got %d", role, http.StatusForbidden, w.Code)
		}
		if reached {
			t.Errorf("Role %q: handler must not run", role)
		}
	}
}

func TestRequireRole_Match(t *testing.T) {
	var reached bool
	router := adminRouter(&reached, func(c *gin.Context) {
		c.Set(CtxUserRole, models.RoleAdmin)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !reached {
		t.Error("Handler was not reached with the required role")
	}
}
