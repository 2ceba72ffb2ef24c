// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"taskboard/config"
	"taskboard/internal/delivery/api/middleware"
	"taskboard/internal/delivery/api/router/handler"
	"taskboard/internal/domain/entity"
	"taskboard/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler       *handler.AuthHandler
	TaskHandler       *handler.TaskHandler
	SessionMiddleware *middleware.SessionMiddleware
	Metrics           *metrics.Metrics `optional:"true"`
	Config            *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler       *handler.AuthHandler
	taskHandler       *handler.TaskHandler
	sessionMiddleware *middleware.SessionMiddleware
	metrics           *metrics.Metrics
	config            *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:       params.AuthHandler,
		taskHandler:       params.TaskHandler,
		sessionMiddleware: params.SessionMiddleware,
		metrics:           params.Metrics,
		config:            params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	if r.metrics != nil && r.config.Metrics.Enabled {
		e.GET("/metrics", echo.WrapHandler(r.metrics.Handler()))
	}

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		// Refresh authenticates with the refresh cookie alone.
		authGroup.GET("/refresh", r.authHandler.Refresh)
		authGroup.GET("/logout", r.authHandler.Logout, r.sessionMiddleware.Authenticate)
		authGroup.GET("/me", r.authHandler.Me, r.sessionMiddleware.Authenticate)
	}

	taskGroup := api.Group("/task")
	taskGroup.Use(r.sessionMiddleware.Authenticate)
	{
		taskGroup.GET("", r.taskHandler.List)
		taskGroup.POST("", r.taskHandler.Create)
		taskGroup.GET("/:id", r.taskHandler.Get)
		taskGroup.PUT("/:id", r.taskHandler.Update)
		taskGroup.DELETE("/:id", r.taskHandler.Delete)
	}

	adminGroup := api.Group("/admin")
	adminGroup.Use(r.sessionMiddleware.Authenticate)
	adminGroup.Use(r.sessionMiddleware.RequireRole(entity.RoleAdmin))
	{
		adminGroup.POST("/sessions/cleanup", r.authHandler.CleanupSessions)
	}
}
