package models

import "time"

// Component health states reported by health checks.
const (
	HealthHealthy   = "healthy"
	HealthDegraded  = "degraded"
	HealthUnhealthy = "unhealthy"
)

/**
 * Single health check outcome
 * @property {string} name - Check name (probe/replicas/registration)
 * @property {bool} passed - Whether the check passed
 * @property {string} message - Failure detail, empty when passed
 */
type HealthCheckResult struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

/**
 * Aggregate health of one component
 * @property {string} status - healthy/degraded/unhealthy
 * @property {[]HealthCheckResult} checks - Individual check outcomes
 */
type ComponentHealth struct {
	ComponentID string              `json:"componentId"`
	Status      string              `json:"status"`
	Checks      []HealthCheckResult `json:"checks"`
	LastUpdated time.Time           `json:"lastUpdated"`
	Version     string              `json:"version,omitempty"`
}

// HealthResponse is the /healthz answer of the daemon itself.
// @Description Health check API response data structure
type HealthResponse struct {
	Version   string  `json:"version" example:"1.0.0"`
	StartTime string  `json:"startTime" example:"2024-01-01T10:00:00Z"`
	Status    string  `json:"status" example:"UP"`
	Uptime    string  `json:"uptime" example:"1h30m45s"`
	Metrics   Metrics `json:"metrics"`
}

// Metrics are the key daemon indicators exposed on /healthz.
// @Description Key system metrics data structure
type Metrics struct {
	TotalRequests        int64 `json:"totalRequests" example:"1000"`
	ErrorRequests        int64 `json:"errorRequests" example:"5"`
	RegisteredComponents int   `json:"registeredComponents" example:"5"`
	DeployedComponents   int   `json:"deployedComponents" example:"3"`
	WorkflowsCompleted   int64 `json:"workflowsCompleted" example:"42"`
	WorkflowsFailed      int64 `json:"workflowsFailed" example:"2"`
}
