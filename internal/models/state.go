package models

import "time"

/**
 * Workflow queue snapshot
 * @property {int} pending - Requests waiting in the priority queue
 * @property {int64} completed - Workflows finished successfully since start/clear
 * @property {int64} failed - Workflows that failed since start/clear
 */
type QueueStatus struct {
	Pending   int   `json:"pending"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

/**
 * Circuit breaker snapshot for status reporting
 */
type BreakerStatus struct {
	State           string    `json:"state"`
	FailureCount    int       `json:"failureCount"`
	LastFailureTime time.Time `json:"lastFailureTime,omitempty"`
}

/**
 * Engine state exposed by the state endpoint/CLI
 */
type EngineState struct {
	StartTime   time.Time                `json:"startTime"`
	Initialized bool                     `json:"initialized"`
	Queue       QueueStatus              `json:"queue"`
	Breakers    map[string]BreakerStatus `json:"breakers"`
	Components  int                      `json:"components"`
	Events      int                      `json:"events"`
}
