package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/mosb/logistics-dashboard/docs"
	"github.com/mosb/logistics-dashboard/internal/api/handler"
	"github.com/mosb/logistics-dashboard/internal/api/middleware"
	"github.com/mosb/logistics-dashboard/internal/core/domain"
	"github.com/mosb/logistics-dashboard/internal/core/ports"
)

// Dependencies holds everything the router wires into handlers. Mongo and
// Redis may be nil when those collaborators are disabled.
type Dependencies struct {
	Dashboard ports.DashboardService
	Reference ports.ReferenceService
	Queue     ports.EventQueue
	Engine    handler.StateReader
	Board     handler.StatusBoard
	Mongo     *mongo.Database
	Redis     *redis.Client
	JWTSecret string
	Log       zerolog.Logger

	// Registry receives the HTTP metrics and backs /metrics. Nil selects the
	// default Prometheus registry, which also holds the engine metrics.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
// When JWTSecret is empty the /api group is served without authentication.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "dashboard",
		Subsystem:  "http",
		Registerer: registerer,
	}))

	// --- Handlers ---
	eventHandler := handler.NewEventHandler(deps.Queue, deps.Dashboard)
	shipmentHandler := handler.NewShipmentHandler(deps.Dashboard)
	overlayHandler := handler.NewOverlayHandler(deps.Dashboard)
	statusHandler := handler.NewStatusHandler(deps.Dashboard)
	referenceHandler := handler.NewReferenceHandler(deps.Reference, deps.Log)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis, deps.Engine, deps.Board)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- API routes ---
	apiGroup := e.Group("/api")
	writers := []echo.MiddlewareFunc{}
	admins := []echo.MiddlewareFunc{}
	if deps.JWTSecret != "" {
		apiGroup.Use(middleware.Auth(deps.JWTSecret))
		writers = append(writers, middleware.RBAC(domain.RoleOps, domain.RoleAdmin))
		admins = append(admins, middleware.RBAC(domain.RoleAdmin))
	}

	apiGroup.GET("/events", eventHandler.List)
	apiGroup.POST("/events", eventHandler.Receive, writers...)

	apiGroup.GET("/shipments", shipmentHandler.List)
	apiGroup.GET("/shipments/:shpt_no", shipmentHandler.Get)
	apiGroup.POST("/shipments", shipmentHandler.Upsert, writers...)

	apiGroup.GET("/overlays/heatmap", overlayHandler.Heatmap)
	apiGroup.GET("/overlays/eta", overlayHandler.Eta)

	apiGroup.GET("/location-status", statusHandler.List)
	apiGroup.POST("/location-status", statusHandler.Push, writers...)
	apiGroup.PUT("/location-status", statusHandler.Replace, admins...)
	apiGroup.GET("/locations/:location_id/events/count", statusHandler.EventCount)

	apiGroup.GET("/geofences", referenceHandler.Geofences)
	apiGroup.POST("/reference/reload", referenceHandler.Reload, admins...)

	return e
}
