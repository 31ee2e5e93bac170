// Package api exposes the task manager over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"task-manager/internal/config"
	"task-manager/internal/service"
)

// Deps are the components the HTTP layer routes to.
type Deps struct {
	Auth   *service.AuthService
	Tasks  *service.TaskService
	Tokens TokenVerifier
	Health *service.HealthMonitor
}

// Server is the configured echo instance.
type Server struct {
	echo *echo.Echo
}

func New(cfg config.Config, deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(cfg.IsProduction())

	e.Use(requestLogger())
	e.Use(middleware.Recover())
	if len(cfg.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
		}))
	}
	e.Use(middleware.BodyLimit("1M"))

	h := &handler{
		auth:        deps.Auth,
		tasks:       deps.Tasks,
		monitor:     deps.Health,
		environment: cfg.Env,
	}
	route(e, h, deps.Tokens)

	return &Server{echo: e}
}

// route registers all available routes.
func route(e *echo.Echo, h *handler, tokens TokenVerifier) {
	e.GET("/", h.healthCheck)

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)

	tasks := api.Group("/tasks", requireAuth(tokens))
	tasks.POST("", h.createTask)
	tasks.GET("", h.listTasks)
	tasks.GET("/filter", h.filterTasks)
	tasks.GET("/:id", h.getTask)
	tasks.PUT("/:id", h.updateTask)
	tasks.DELETE("/:id", h.deleteTask)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
