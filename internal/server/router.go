// Package server wires the HTTP surface: routing, middleware, and handlers.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"securetask/backend/internal/server/handler"
	"securetask/backend/internal/server/middleware"
)

// NewRouter assembles the gin engine with all routes and middleware.
// Authentication routes are rate limited; everything under /api/v1/tasks and
// /api/v1/users requires a valid bearer token.
func NewRouter(
	logger *zap.Logger,
	authHandler *handler.AuthHandler,
	taskHandler *handler.TaskHandler,
	authn *middleware.Authenticator,
	limiter *middleware.RateLimiter,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(otelgin.Middleware("securetask"))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	})

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Use(limiter.Handler())
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
	}

	tasks := api.Group("/tasks")
	tasks.Use(authn.RequireAuth())
	{
		tasks.GET("", taskHandler.List)
		tasks.GET("/assigned", taskHandler.ListAssigned)
		tasks.GET("/:id", taskHandler.Get)
		tasks.POST("", taskHandler.Create)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.PATCH("/:id/status", taskHandler.UpdateStatus)
		tasks.DELETE("/:id", taskHandler.Delete)
	}

	users := api.Group("/users")
	users.Use(authn.RequireAuth())
	{
		users.GET("/:id/tasks", taskHandler.ListForUser)
		users.GET("/:id/tasks/assigned", taskHandler.ListAssignedForUser)
	}

	return r
}

// NewHTTPServer wraps the handler in an http.Server with sane timeouts.
func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
