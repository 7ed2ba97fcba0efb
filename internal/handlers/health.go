package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"crate/internal/config"
	"crate/internal/database"
)

// DependencyHealthStatus reports the health of one backing dependency.
type DependencyHealthStatus struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latencyMs"`
	Message   string `json:"message,omitempty"`
}

// FeatureFlags reports which optional subsystems are wired into this
// process, so the UI can hide controls it can't currently back.
type FeatureFlags struct {
	ScanningEnabled        bool `json:"scanningEnabled"`
	DiscographySyncEnabled bool `json:"discographySyncEnabled"`
}

// HealthResponse is the body served by GET /health.
type HealthResponse struct {
	Status   string                  `json:"status"`
	Version  config.VersionConfig    `json:"version"`
	DB       DependencyHealthStatus  `json:"db"`
	Queue    *DependencyHealthStatus `json:"queue,omitempty"`
	Features FeatureFlags            `json:"features"`
}

const degradedLatencyThreshold = 200 * time.Millisecond

// HealthHandler serves GET /health: a database liveness check plus the
// feature flags describing which background subsystems are wired in.
type HealthHandler struct {
	dbManager *database.DatabaseManager
	redis     *redis.Client // nil when the job queue isn't configured
	version   config.VersionConfig
	flags     FeatureFlags
}

func NewHealthHandler(dbManager *database.DatabaseManager, redisClient *redis.Client, version config.VersionConfig, flags FeatureFlags) *HealthHandler {
	return &HealthHandler{
		dbManager: dbManager,
		redis:     redisClient,
		version:   version,
		flags:     flags,
	}
}

func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	dbHealth := h.checkDBHealth()

	status := "ok"
	switch dbHealth.Status {
	case "degraded":
		status = "degraded"
	case "error":
		status = "error"
	}

	var queueHealth *DependencyHealthStatus
	if h.redis != nil {
		qh := h.checkRedisHealth(c.Context())
		queueHealth = &qh
		if qh.Status != "ok" && status == "ok" {
			status = "degraded"
		}
	}

	resp := HealthResponse{
		Status:   status,
		Version:  h.version,
		DB:       dbHealth,
		Queue:    queueHealth,
		Features: h.flags,
	}

	httpStatus := http.StatusOK
	if status != "ok" {
		httpStatus = http.StatusServiceUnavailable
	}

	c.Set("Cache-Control", "no-store")
	c.Set("Content-Type", "application/json")

	return c.Status(httpStatus).JSON(resp)
}

func (h *HealthHandler) checkDBHealth() DependencyHealthStatus {
	start := time.Now()

	db := h.dbManager.GetGormDB()
	var result int
	err := db.Raw("SELECT 1").Scan(&result).Error
	latency := time.Since(start)

	if err != nil {
		return DependencyHealthStatus{Status: "error", LatencyMs: latency.Milliseconds(), Message: err.Error()}
	}
	if latency > degradedLatencyThreshold {
		return DependencyHealthStatus{Status: "degraded", LatencyMs: latency.Milliseconds(), Message: "database response time above threshold"}
	}
	return DependencyHealthStatus{Status: "ok", LatencyMs: latency.Milliseconds()}
}

func (h *HealthHandler) checkRedisHealth(ctx context.Context) DependencyHealthStatus {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.redis.Ping(pingCtx).Err()
	latency := time.Since(start)

	if err != nil {
		return DependencyHealthStatus{Status: "error", LatencyMs: latency.Milliseconds(), Message: err.Error()}
	}
	return DependencyHealthStatus{Status: "ok", LatencyMs: latency.Milliseconds()}
}
