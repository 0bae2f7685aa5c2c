package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/simp-lee/touradmin/internal/pkg"
)

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Modules []Module
	DB      *gorm.DB
	// Authenticate guards the /api/v1 group. Nil leaves it open, which only
	// tests do.
	Authenticate gin.HandlerFunc
	// UploadDir is served under UploadURL when UploadURL is a local path.
	UploadDir string
	UploadURL string
}

// RegisterRoutes registers all application routes on the given gin.Engine.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}

	r.GET("/health", healthHandler(deps.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if err := registerUploadRoutes(r, deps.UploadURL, deps.UploadDir); err != nil {
		return fmt.Errorf("register upload routes: %w", err)
	}

	api := r.Group("/api/v1")
	if deps.Authenticate != nil {
		api.Use(deps.Authenticate)
	}
	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(api)
	}

	r.NoRoute(noRouteHandler())
	r.HandleMethodNotAllowed = true
	r.NoMethod(noMethodHandler())

	return nil
}

// healthHandler returns a handler that pings the database and reports status.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		status := "ok"
		code := http.StatusOK

		if err := pingDB(c.Request.Context(), db); err != nil {
			dbStatus = "error"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status": status,
			"components": gin.H{
				"database": dbStatus,
			},
		})
	}
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database not configured")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// registerUploadRoutes serves uploaded blobs when they live under a local
// URL path. Remote base URLs are served elsewhere.
func registerUploadRoutes(r *gin.Engine, urlPath, dir string) error {
	if urlPath == "" || !strings.HasPrefix(urlPath, "/") {
		return nil
	}
	if dir == "" {
		return errors.New("upload directory is required for a local upload path")
	}
	if urlPath == "/" || strings.HasPrefix(urlPath, "/api/") {
		return fmt.Errorf("upload path %q collides with application routes", urlPath)
	}
	fileServer := http.StripPrefix(urlPath, http.FileServer(http.Dir(dir)))
	r.GET(urlPath+"/*filepath", func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=86400")
		c.Header("X-Content-Type-Options", "nosniff")
		fileServer.ServeHTTP(c.Writer, c.Request)
	})
	return nil
}

func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, pkg.Response{Code: http.StatusNotFound, Message: "not found"})
	}
}

func noMethodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, pkg.Response{Code: http.StatusMethodNotAllowed, Message: "method not allowed"})
	}
}
