package models

import "time"

/**
 * Request context attached to every workflow request
 * @property {string} id - Request identifier
 * @property {time.Time} timestamp - Submission time
 * @property {string} traceId - Trace identifier carried through to the result
 */
type RequestContext struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	TraceID   string    `json:"traceId"`
}

/**
 * Workflow request submitted to the orchestration engine
 * @property {string} type - Routing type (readme-to-cicd / system-maintenance / ...)
 * @property {map} payload - Opaque payload interpreted by the routed handler
 * @property {string} priority - critical/high/normal/low or a numeric string
 * @description Immutable; consumed exactly once, producing exactly one WorkflowResult
 */
type WorkflowRequest struct {
	Type     string                 `json:"type"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
	Context  RequestContext         `json:"context"`
	Priority string                 `json:"priority,omitempty"`
}

// WorkflowMetrics carries per-request measurements.
type WorkflowMetrics struct {
	Duration time.Duration `json:"duration"`
}

/**
 * Result of processing one workflow request
 * @property {bool} success - Whether the workflow completed
 * @property {map} data - Result payload when successful
 * @property {[]string} errors - Non-empty error list when failed
 */
type WorkflowResult struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Errors  []string               `json:"errors,omitempty"`
	Metrics WorkflowMetrics        `json:"metrics"`
	TraceID string                 `json:"traceId"`
}

/**
 * Component operation routed through the engine façade
 * @property {string} action - start/stop/restart/scale/deploy/update/configure
 * @property {string} componentId - Target component id
 * @property {map} payload - Action-specific payload
 */
type ComponentOperation struct {
	Action      string                 `json:"action"`
	ComponentID string                 `json:"componentId"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
}

// OperationResult is the uniform outcome of a component operation.
type OperationResult struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
