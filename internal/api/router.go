package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/socialgraph/social-api/docs"
	"github.com/socialgraph/social-api/internal/api/handler"
	"github.com/socialgraph/social-api/internal/api/middleware"
	"github.com/socialgraph/social-api/internal/core/ports"
	"github.com/socialgraph/social-api/internal/pkg/validation"
)

// Dependencies is everything the router needs to serve requests.
type Dependencies struct {
	Users    ports.UserService
	Friends  ports.FriendService
	Thoughts ports.ThoughtService

	Validator *validation.Validator
	Logger    zerolog.Logger
	// Checks are pinged by the readiness probe, keyed by dependency name.
	Checks map[string]handler.Pinger
	// Registry receives the HTTP metrics. Defaults to the global Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator(deps.Validator)
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "socialgraph",
		Registerer: registerer,
	}))

	// --- Operational routes ---
	health := handler.NewHealthHandler(deps.Checks)
	e.GET("/health", health.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- API routes ---
	users := handler.NewUserHandler(deps.Users, deps.Friends)
	thoughts := handler.NewThoughtHandler(deps.Thoughts)

	api := e.Group("/api")

	api.GET("/users", users.List)
	api.POST("/users", users.Create)
	api.GET("/users/:userId", users.Get)
	api.PUT("/users/:userId", users.Update)
	api.DELETE("/users/:userId", users.Delete)
	api.POST("/users/:userId/friends/:friendId", users.AddFriend)
	api.DELETE("/users/:userId/friends/:friendId", users.RemoveFriend)

	api.GET("/thoughts", thoughts.List)
	api.POST("/thoughts", thoughts.Create)
	api.GET("/thoughts/:thoughtId", thoughts.Get)
	api.PUT("/thoughts/:thoughtId", thoughts.Update)
	api.DELETE("/thoughts/:thoughtId", thoughts.Delete)
	api.POST("/thoughts/:thoughtId/reactions", thoughts.AddReaction)
	api.DELETE("/thoughts/:thoughtId/reactions/:reactionId", thoughts.RemoveReaction)

	return e
}
