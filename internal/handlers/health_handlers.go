package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is any dependency that can report its own reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db        Pinger
	cache     Pinger
	storage   Pinger
	version   string
	startedAt time.Time
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(db, cache, storage Pinger, version string) *HealthHandlers {
	return &HealthHandlers{
		db:        db,
		cache:     cache,
		storage:   storage,
		version:   version,
		startedAt: time.Now(),
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
}

const healthCheckTimeout = 3 * time.Second

func check(ctx context.Context, p Pinger) error {
	if p == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return p.Ping(ctx)
}

// HealthCheck godoc
// @Summary Dependency health
// @Tags health
// @Success 200 {object} HealthStatus
// @Success 206 {object} HealthStatus
// @Router /health [get]
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx := c.Request().Context()
	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Version:   h.version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
	}

	deps := map[string]Pinger{"database": h.db, "redis": h.cache, "storage": h.storage}
	for name, dep := range deps {
		if err := check(ctx, dep); err != nil {
			health.Services[name] = "unhealthy"
			health.Status = "degraded"
		} else {
			health.Services[name] = "healthy"
		}
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusPartialContent
	}

	return c.JSON(statusCode, health)
}

// ReadinessCheck determines if the application is ready to serve traffic
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx := c.Request().Context()

	// storage is not critical; documents degrade, everything else works
	if check(ctx, h.db) != nil || check(ctx, h.cache) != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Critical services unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

// LivenessCheck determines if the application is running (basic liveness probe)
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// DetailedHealthCheck provides detailed health information
func (h *HealthHandlers) DetailedHealthCheck(c echo.Context) error {
	ctx := c.Request().Context()

	overall := "healthy"
	checks := make(map[string]interface{})
	deps := map[string]Pinger{"database": h.db, "redis": h.cache, "storage": h.storage}
	for name, dep := range deps {
		started := time.Now()
		result := map[string]interface{}{"status": "healthy"}
		if err := check(ctx, dep); err != nil {
			result["status"] = "unhealthy"
			result["message"] = err.Error()
			overall = "degraded"
		}
		result["latency_ms"] = time.Since(started).Milliseconds()
		checks[name] = result
	}

	statusCode := http.StatusOK
	if overall == "degraded" {
		statusCode = http.StatusPartialContent
	}

	return c.JSON(statusCode, map[string]interface{}{
		"overall_status": overall,
		"checks":         checks,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"version":        h.version,
		"goroutines":     runtime.NumGoroutine(),
	})
}
