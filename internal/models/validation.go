package models

// Issue codes reported by dependency validation.
const (
	CodeMissingDependency        = "MISSING_DEPENDENCY"
	CodeCircularDependency       = "CIRCULAR_DEPENDENCY"
	CodeVersionConflict          = "VERSION_CONFLICT"
	CodeDependencyOrderViolation = "DEPENDENCY_ORDER_VIOLATION"
	CodeComponentNotFound        = "COMPONENT_NOT_FOUND"
	CodeSuggestedOrder           = "SUGGESTED_ORDER"
)

/**
 * Single validation finding
 * @property {string} code - Machine readable issue code
 * @property {string} componentId - Component the finding refers to
 * @property {string} message - Human readable detail
 */
type ValidationIssue struct {
	Code        string `json:"code"`
	ComponentID string `json:"componentId,omitempty"`
	Message     string `json:"message"`
}

/**
 * Structured outcome of dependency validation
 * @property {bool} valid - True when no errors were found (warnings allowed)
 */
type ValidationReport struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationIssue `json:"errors,omitempty"`
	Warnings []ValidationIssue `json:"warnings,omitempty"`
}

/**
 * Recursive dependency tree node mirroring direct edges
 * @description Not deduplicated across branches; shared dependencies repeat
 */
type DependencyNode struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Dependencies []*DependencyNode `json:"dependencies,omitempty"`
}
