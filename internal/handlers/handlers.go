package handlers

import (
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmwangi/soko-api/internal/middleware"
	"github.com/dmwangi/soko-api/internal/models"
)

// Handlers holds the dependencies shared by every request handler: the
// connection pool, the structured logger, and the token-signing material.
// It is constructed once in main and injected into the router.
type Handlers struct {
	DB        *sql.DB
	Logger    *zap.Logger
	JWTSecret []byte
	JWTExpiry time.Duration
}

// currentUserID returns the identity attached by the auth middleware. The
// middleware guarantees the key exists on protected routes.
func currentUserID(c *gin.Context) int64 {
	raw, _ := c.Get(middleware.CtxUserID)
	id, _ := raw.(int64)
	return id
}

func currentUserRole(c *gin.Context) models.Role {
	raw, _ := c.Get(middleware.CtxUserRole)
	role, _ := raw.(models.Role)
	return role
}
