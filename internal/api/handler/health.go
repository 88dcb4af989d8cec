package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mosb/logistics-dashboard/internal/core/engine"
)

// StateReader exposes the published engine state to the readiness probe.
type StateReader interface {
	Snapshot() *engine.State
}

// StatusBoard reports how many locations currently hold a status reading.
type StatusBoard interface {
	Len() int
}

// HealthHandler handles GET /health, the liveness probe.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// HealthDependenciesHandler handles GET /health/ready, the readiness probe.
// A nil database or cache is reported as disabled and does not fail the probe.
type HealthDependenciesHandler struct {
	mongo  *mongo.Database
	redis  *redis.Client
	engine StateReader
	board  StatusBoard
}

func NewHealthDependenciesHandler(db *mongo.Database, rdb *redis.Client, eng StateReader, board StatusBoard) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{
		mongo:  db,
		redis:  rdb,
		engine: eng,
		board:  board,
	}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type engineStatus struct {
	Version   uint64 `json:"version"`
	Events    int    `json:"events"`
	Shipments int    `json:"shipments"`
	Zones     int    `json:"zones"`
	Locations int    `json:"locations"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
	Engine       *engineStatus               `json:"engine,omitempty"`
}

func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus)
	healthy := true

	// --- MongoDB ping ---
	if h.mongo == nil {
		deps["mongodb"] = dependencyStatus{Status: "disabled"}
	} else if err := h.mongo.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		deps["mongodb"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
		healthy = false
	} else {
		deps["mongodb"] = dependencyStatus{Status: "ok"}
	}

	// --- Redis ping ---
	if h.redis == nil {
		deps["redis"] = dependencyStatus{Status: "disabled"}
	} else if _, err := h.redis.Ping(ctx).Result(); err != nil {
		deps["redis"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
		healthy = false
	} else {
		deps["redis"] = dependencyStatus{Status: "ok"}
	}

	resp := readinessResponse{Dependencies: deps}
	if h.engine != nil {
		s := h.engine.Snapshot()
		resp.Engine = &engineStatus{
			Version:   s.Version,
			Events:    s.Len(),
			Shipments: s.ProjectionCount(),
			Zones:     s.Index.Len(),
		}
		if h.board != nil {
			resp.Engine.Locations = h.board.Len()
		}
	}

	resp.Status = "ok"
	httpStatus := http.StatusOK
	if !healthy {
		resp.Status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, resp)
}
