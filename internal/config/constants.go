package config

import "time"

// Application constants
const (
	AppName = "Fusion Collections Dashboard"

	// DefaultDataFile is the allocation workbook read when none is configured.
	DefaultDataFile = "Fusion_1_30_Allocation.xlsx"

	// API Endpoints
	APIBasePath       = "/api"
	DashboardEndpoint = "/api/dashboard"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"

	// Health check budget
	HealthCheckTimeout = 5 * time.Second
)
