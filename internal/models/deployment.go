package models

import "time"

// Deployment lifecycle states (modeled, not executed infrastructure changes).
const (
	DeployStatusRunning = "running"
	DeployStatusStopped = "stopped"
	DeployStatusFailed  = "failed"
)

/**
 * Deployment configuration accepted by deploy operations
 * @property {string} strategy - Rollout strategy label (informational)
 * @property {map} environment - Environment values handed to the modeled rollout
 */
type DeploymentConfig struct {
	Strategy    string            `json:"strategy,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
}

/**
 * Result of a deploy operation
 * @description Deploy failures are reported here, not raised as errors
 */
type DeploymentResult struct {
	Success     bool      `json:"success"`
	ComponentID string    `json:"componentId"`
	Replicas    int       `json:"replicas"`
	Message     string    `json:"message,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

/**
 * Scaling request: either an explicit replica count or a replacement policy
 * @property {*int} replicas - Explicit count, clamped into [min,max]
 * @property {*ScalingSpec} policy - Replaces the component's scaling block
 */
type ScalingConfig struct {
	Replicas *int         `json:"replicas,omitempty"`
	Policy   *ScalingSpec `json:"policy,omitempty"`
}

/**
 * Composite read-only status view of one component
 * @description Nil fields for unknown component ids, never an error
 */
type ComponentStatus struct {
	ComponentID string               `json:"componentId"`
	Definition  *ComponentDefinition `json:"definition,omitempty"`
	Deployed    bool                 `json:"deployed"`
	Replicas    int                  `json:"replicas"`
	Status      string               `json:"status,omitempty"`
	Health      *ComponentHealth     `json:"health,omitempty"`
	StartTime   string               `json:"startTime,omitempty"`
}

/**
 * Communication view: who this component talks to and who talks to it
 */
type ComponentCommunication struct {
	ComponentID  string   `json:"componentId"`
	Dependencies []string `json:"dependencies,omitempty"`
	Dependents   []string `json:"dependents,omitempty"`
	Endpoint     string   `json:"endpoint,omitempty"`
}
