package models

import "time"

/**
 * Event severity enumeration
 */
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Well-known event types emitted by the engine and the component manager.
const (
	EventWorkflowStarted   = "workflow.started"
	EventWorkflowCompleted = "workflow.completed"
	EventWorkflowFailed    = "workflow.failed"
	EventWorkflowTimeout   = "workflow.timeout"

	EventComponentRegistered         = "component.registered"
	EventComponentRegistrationFailed = "component.registrationFailed"
	EventComponentDeployed           = "component.deployed"
	EventComponentDeployFailed       = "component.deployFailed"
	EventComponentScaled             = "component.scaled"
	EventComponentScaleFailed        = "component.scaleFailed"
	EventComponentUpdated            = "component.updated"
	EventComponentUpdateFailed       = "component.updateFailed"
	EventComponentRolledBack         = "component.rolledBack"
	EventComponentRollbackFailed     = "component.rollbackFailed"
	EventComponentRemoved            = "component.removed"
	EventComponentRemoveFailed       = "component.removeFailed"
)

/**
 * System event broadcast to listeners and retained in the event store
 * @property {string} id - Event identifier, assigned at append when empty
 * @property {string} type - Dot-namespaced event type (e.g. workflow.completed)
 * @property {string} source - Emitting subsystem
 * @property {time.Time} timestamp - Assigned by the store at append, not by the caller
 * @description Immutable once appended
 */
type SystemEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Severity  Severity               `json:"severity"`
}
