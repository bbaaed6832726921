package models

/**
 * Component kind enumeration
 * @description Allowed kinds for a registrable component
 */
type ComponentType string

const (
	TypeService   ComponentType = "service"
	TypeFunction  ComponentType = "function"
	TypeWorker    ComponentType = "worker"
	TypeExtension ComponentType = "extension"
)

// AllComponentTypes lists every valid component kind, used by validation.
var AllComponentTypes = []ComponentType{TypeService, TypeFunction, TypeWorker, TypeExtension}

/**
 * Resource requirements of a component
 * @property {string} cpu - CPU request (e.g. "500m")
 * @property {string} memory - Memory request (e.g. "256Mi")
 * @property {map} limits - Optional hard limits keyed by resource name
 */
type ResourceSpec struct {
	CPU    string            `json:"cpu" yaml:"cpu" mapstructure:"cpu"`
	Memory string            `json:"memory" yaml:"memory" mapstructure:"memory"`
	Limits map[string]string `json:"limits,omitempty" yaml:"limits,omitempty" mapstructure:"limits"`
}

/**
 * Health check probe configuration
 * @property {string} type - Probe type: http/tcp/exec/grpc
 * @property {string} endpoint - Probe endpoint (http path or exec command)
 * @property {int} port - Probe port for tcp/grpc probes
 */
type HealthCheckSpec struct {
	Type                string `json:"type" yaml:"type" mapstructure:"type"`
	Endpoint            string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" mapstructure:"endpoint"`
	Port                int    `json:"port,omitempty" yaml:"port,omitempty" mapstructure:"port"`
	InitialDelaySeconds int    `json:"initialDelaySeconds" yaml:"initial_delay_seconds" mapstructure:"initial_delay_seconds"`
	PeriodSeconds       int    `json:"periodSeconds" yaml:"period_seconds" mapstructure:"period_seconds"`
	TimeoutSeconds      int    `json:"timeoutSeconds" yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	FailureThreshold    int    `json:"failureThreshold" yaml:"failure_threshold" mapstructure:"failure_threshold"`
	SuccessThreshold    int    `json:"successThreshold" yaml:"success_threshold" mapstructure:"success_threshold"`
}

// HealthCheckTypes lists every valid probe type.
var HealthCheckTypes = []string{"http", "tcp", "exec", "grpc"}

/**
 * Scaling policy of a component
 * @property {int} minReplicas - Lower replica bound (>= 0)
 * @property {int} maxReplicas - Upper replica bound (>= minReplicas)
 * @property {*int} targetCPUUtilization - Auto-scaling target in [1,100], optional
 */
type ScalingSpec struct {
	MinReplicas          int  `json:"minReplicas" yaml:"min_replicas" mapstructure:"min_replicas"`
	MaxReplicas          int  `json:"maxReplicas" yaml:"max_replicas" mapstructure:"max_replicas"`
	TargetCPUUtilization *int `json:"targetCPUUtilization,omitempty" yaml:"target_cpu_utilization,omitempty" mapstructure:"target_cpu_utilization"`
}

/**
 * Component definition (serialized to JSON format)
 * @property {string} id - Unique identifier, pattern [a-z0-9-]+
 * @property {string} name - Human readable name
 * @property {string} version - Semantic version string
 * @property {ComponentType} type - Component kind: service/function/worker/extension
 * @property {[]string} dependencies - Ids of components this one depends on
 * @description
 * - Created by register, mutated by update (id immutable), destroyed by unregister
 * - The dependency graph over all registered components must remain acyclic
 */
type ComponentDefinition struct {
	ID           string          `json:"id" yaml:"id" mapstructure:"id"`
	Name         string          `json:"name" yaml:"name" mapstructure:"name"`
	Version      string          `json:"version" yaml:"version" mapstructure:"version"`
	Type         ComponentType   `json:"type" yaml:"type" mapstructure:"type"`
	Dependencies []string        `json:"dependencies,omitempty" yaml:"dependencies,omitempty" mapstructure:"dependencies"`
	Resources    ResourceSpec    `json:"resources" yaml:"resources" mapstructure:"resources"`
	HealthCheck  HealthCheckSpec `json:"healthCheck" yaml:"health_check" mapstructure:"health_check"`
	Scaling      ScalingSpec     `json:"scaling" yaml:"scaling" mapstructure:"scaling"`
}

// Clone returns a deep copy so callers can hold definitions without aliasing
// registry state.
func (d ComponentDefinition) Clone() ComponentDefinition {
	out := d
	if d.Dependencies != nil {
		out.Dependencies = append([]string(nil), d.Dependencies...)
	}
	if d.Resources.Limits != nil {
		out.Resources.Limits = make(map[string]string, len(d.Resources.Limits))
		for k, v := range d.Resources.Limits {
			out.Resources.Limits[k] = v
		}
	}
	if d.Scaling.TargetCPUUtilization != nil {
		v := *d.Scaling.TargetCPUUtilization
		out.Scaling.TargetCPUUtilization = &v
	}
	return out
}

/**
 * Partial component definition used by update operations
 * @description
 * - Nil fields leave the existing definition untouched
 * - The id is immutable and therefore absent here
 */
type ComponentPatch struct {
	Name         *string          `json:"name,omitempty"`
	Version      *string          `json:"version,omitempty"`
	Type         *ComponentType   `json:"type,omitempty"`
	Dependencies *[]string        `json:"dependencies,omitempty"`
	Resources    *ResourceSpec    `json:"resources,omitempty"`
	HealthCheck  *HealthCheckSpec `json:"healthCheck,omitempty"`
	Scaling      *ScalingSpec     `json:"scaling,omitempty"`
}

// Apply merges the patch onto a copy of the given definition.
func (p ComponentPatch) Apply(base ComponentDefinition) ComponentDefinition {
	merged := base.Clone()
	if p.Name != nil {
		merged.Name = *p.Name
	}
	if p.Version != nil {
		merged.Version = *p.Version
	}
	if p.Type != nil {
		merged.Type = *p.Type
	}
	if p.Dependencies != nil {
		merged.Dependencies = append([]string(nil), (*p.Dependencies)...)
	}
	if p.Resources != nil {
		merged.Resources = *p.Resources
	}
	if p.HealthCheck != nil {
		merged.HealthCheck = *p.HealthCheck
	}
	if p.Scaling != nil {
		merged.Scaling = *p.Scaling
		if p.Scaling.TargetCPUUtilization != nil {
			v := *p.Scaling.TargetCPUUtilization
			merged.Scaling.TargetCPUUtilization = &v
		}
	}
	return merged
}
