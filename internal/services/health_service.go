package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"fusiondash/internal/config"
	"fusiondash/internal/infrastructure"
	"fusiondash/pkg/contracts"
)

// DatasetProbe is the part of the dashboard service health checks look at.
type DatasetProbe interface {
	DataFile() string
	CacheStats() CacheStats
}

// ClientCounter reports connected WebSocket clients.
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	dataset   DatasetProbe
	clients   ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// DetailedHealth combines every check with runtime and cache statistics.
type DetailedHealth struct {
	Health    HealthStatus                `json:"health"`
	Readiness HealthStatus                `json:"readiness"`
	Liveness  HealthStatus                `json:"liveness"`
	Runtime   infrastructure.RuntimeStats `json:"runtime"`
	Cache     CacheStats                  `json:"cache"`
	Clients   int                         `json:"websocket_clients"`
}

// NewHealthService creates a health service. clients may be nil.
func NewHealthService(version, buildTime string, dataset DatasetProbe, clients ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		dataset:   dataset,
		clients:   clients,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready when the allocation file is present.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"data":      hs.checkDataHealth(),
			"websocket": hs.checkWebSocketHealth(),
		},
	}

	for _, sh := range status.Services {
		if sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	if status.Status != "ready" {
		hs.logger.WarnContext(ctx, "ReadinessCheck: not ready",
			slog.String("data", status.Services["data"].Message))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"api_version":  contracts.APIVersion,
		"git_commit":   contracts.GitCommit,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

// GetDetailedHealth returns comprehensive health information
func (hs *HealthService) GetDetailedHealth(ctx context.Context) DetailedHealth {
	detailed := DetailedHealth{
		Health:    hs.HealthCheck(ctx),
		Readiness: hs.ReadinessCheck(ctx),
		Liveness:  hs.LivenessCheck(ctx),
		Runtime:   infrastructure.CollectRuntimeStats(hs.startTime),
	}
	if hs.dataset != nil {
		detailed.Cache = hs.dataset.CacheStats()
	}
	if hs.clients != nil {
		detailed.Clients = hs.clients.ClientCount()
	}
	return detailed
}

func (hs *HealthService) checkDataHealth() ServiceHealth {
	if hs.dataset == nil {
		return ServiceHealth{Status: "not_ready", Message: "dashboard service not initialized"}
	}
	path := hs.dataset.DataFile()
	if !config.FileExists(path) {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Data file not found: %s", path),
		}
	}
	return ServiceHealth{Status: "ready", Message: "Data file is present"}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	return ServiceHealth{
		Status:  "ready",
		Message: "WebSocket service is healthy",
		Uptime:  time.Since(hs.startTime).String(),
	}
}
