package registry

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	goversion "github.com/hashicorp/go-version"

	"cicd-orchestrator/internal/models"
)

var (
	ErrComponentNotFound  = errors.New("component not found")
	ErrDuplicateComponent = errors.New("component already registered")
)

var idPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

/**
 * Aggregate of every validation failure found in one definition
 * @description A definition is rejected before any state change; all problems
 *   are reported at once rather than one per attempt
 */
type ValidationError struct {
	ComponentID string
	Problems    []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("component '%s' failed validation: %s", e.ComponentID, strings.Join(e.Problems, "; "))
}

/**
 * Validated CRUD store of component definitions and their dependency edges
 * @description Safe for concurrent use; definitions are copied on the way in
 *   and out so callers never alias registry state
 */
type Registry struct {
	mu         sync.RWMutex
	components map[string]models.ComponentDefinition
}

func New() *Registry {
	return &Registry{
		components: make(map[string]models.ComponentDefinition),
	}
}

/**
 * Validate a component definition
 * @returns {error} nil, or a *ValidationError aggregating every failure
 */
func Validate(def models.ComponentDefinition) error {
	var problems []string
	if !idPattern.MatchString(def.ID) {
		problems = append(problems, fmt.Sprintf("id '%s' must match [a-z0-9-]+", def.ID))
	}
	if def.Name == "" {
		problems = append(problems, "name must not be empty")
	}
	if _, err := goversion.NewVersion(def.Version); err != nil {
		problems = append(problems, fmt.Sprintf("version '%s' is not a valid version", def.Version))
	}
	validType := false
	for _, t := range models.AllComponentTypes {
		if def.Type == t {
			validType = true
			break
		}
	}
	if !validType {
		problems = append(problems, fmt.Sprintf("type '%s' must be one of service/function/worker/extension", def.Type))
	}
	if def.Resources.CPU == "" {
		problems = append(problems, "resources.cpu must not be empty")
	}
	if def.Resources.Memory == "" {
		problems = append(problems, "resources.memory must not be empty")
	}
	problems = append(problems, validateHealthCheck(def.HealthCheck)...)
	problems = append(problems, validateScaling(def.Scaling)...)
	for _, dep := range def.Dependencies {
		if dep == def.ID {
			problems = append(problems, "dependencies must not contain the component's own id")
		}
	}
	if len(problems) > 0 {
		return &ValidationError{ComponentID: def.ID, Problems: problems}
	}
	return nil
}

func validateHealthCheck(hc models.HealthCheckSpec) []string {
	var problems []string
	validType := false
	for _, t := range models.HealthCheckTypes {
		if hc.Type == t {
			validType = true
			break
		}
	}
	if !validType {
		problems = append(problems, fmt.Sprintf("healthCheck.type '%s' must be one of http/tcp/exec/grpc", hc.Type))
	}
	if hc.InitialDelaySeconds < 0 {
		problems = append(problems, "healthCheck.initialDelaySeconds must be >= 0")
	}
	if hc.PeriodSeconds <= 0 {
		problems = append(problems, "healthCheck.periodSeconds must be > 0")
	}
	if hc.TimeoutSeconds < 0 {
		problems = append(problems, "healthCheck.timeoutSeconds must be >= 0")
	}
	if hc.FailureThreshold < 0 {
		problems = append(problems, "healthCheck.failureThreshold must be >= 0")
	}
	if hc.SuccessThreshold < 0 {
		problems = append(problems, "healthCheck.successThreshold must be >= 0")
	}
	return problems
}

func validateScaling(sc models.ScalingSpec) []string {
	var problems []string
	if sc.MinReplicas < 0 {
		problems = append(problems, "scaling.minReplicas must be >= 0")
	}
	if sc.MaxReplicas < sc.MinReplicas {
		problems = append(problems, "scaling.maxReplicas must be >= scaling.minReplicas")
	}
	if sc.TargetCPUUtilization != nil {
		if v := *sc.TargetCPUUtilization; v < 1 || v > 100 {
			problems = append(problems, "scaling.targetCPUUtilization must be in [1,100]")
		}
	}
	return problems
}

/**
 * Register a new component definition
 * @returns {error} *ValidationError on a bad definition, ErrDuplicateComponent
 *   when the id already exists, nil on success
 * @description Validation runs before the duplicate check so a bad definition
 *   is always reported in full
 */
func (r *Registry) Register(def models.ComponentDefinition) error {
	if err := Validate(def); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.components[def.ID]; exists {
		return fmt.Errorf("%w: '%s'", ErrDuplicateComponent, def.ID)
	}
	r.components[def.ID] = def.Clone()
	return nil
}

// Get returns the definition for the id and whether it exists.
func (r *Registry) Get(id string) (models.ComponentDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.components[id]
	if !ok {
		return models.ComponentDefinition{}, false
	}
	return def.Clone(), true
}

// Exists reports whether the id is registered.
func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.components[id]
	return ok
}

// Count returns the number of registered components.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.components)
}

// List returns every registered definition sorted by id.
func (r *Registry) List() []models.ComponentDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.ComponentDefinition, 0, len(r.components))
	for _, def := range r.components {
		out = append(out, def.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindByType returns registered definitions of the given kind, sorted by id.
func (r *Registry) FindByType(t models.ComponentType) []models.ComponentDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.ComponentDefinition
	for _, def := range r.components {
		if def.Type == t {
			out = append(out, def.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

/**
 * Merge a partial definition onto an existing component and re-validate
 * @param {string} id - Target component id (immutable)
 * @param {models.ComponentPatch} patch - Fields to overwrite
 * @returns {error} ErrComponentNotFound, *ValidationError, or nil
 */
func (r *Registry) Update(id string, patch models.ComponentPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.components[id]
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrComponentNotFound, id)
	}
	merged := patch.Apply(existing)
	merged.ID = id
	if err := Validate(merged); err != nil {
		return err
	}
	r.components[id] = merged
	return nil
}

// Unregister removes the component or reports ErrComponentNotFound.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.components[id]; !ok {
		return fmt.Errorf("%w: '%s'", ErrComponentNotFound, id)
	}
	delete(r.components, id)
	return nil
}

/**
 * Find components whose dependency set contains the given id
 * @returns {[]models.ComponentDefinition} Direct dependents sorted by id
 */
func (r *Registry) FindDependents(id string) []models.ComponentDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.ComponentDefinition
	for _, def := range r.components {
		for _, dep := range def.Dependencies {
			if dep == id {
				out = append(out, def.Clone())
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Clear empties the registry.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.components = make(map[string]models.ComponentDefinition)
	r.mu.Unlock()
}
