package services

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"cicd-orchestrator/internal/logger"
	"cicd-orchestrator/internal/models"
	"cicd-orchestrator/internal/registry"
)

/**
 * Raised by RegisterComponent when declared dependencies are unregistered
 * @description The definition itself stays registered; only the dependency
 *   closure is incomplete
 */
type DependencyValidationError struct {
	ComponentID string
	Missing     []string
}

func (e *DependencyValidationError) Error() string {
	return fmt.Sprintf("component '%s' declares unregistered dependencies: %s",
		e.ComponentID, strings.Join(e.Missing, ", "))
}

// EventSink receives every event a manager emits. The engine wires this to
// HandleSystemEvent so manager activity reaches the store and the listeners.
type EventSink func(models.SystemEvent)

// deployment is the modeled runtime state of one deployed component.
type deployment struct {
	replicas    int
	status      string
	startTime   time.Time
	strategy    string
	environment map[string]string
	healthStop  chan struct{}
	scaleStop   chan struct{}
	lastHealth  *models.ComponentHealth
}

func (d *deployment) stopPollers() {
	if d.healthStop != nil {
		close(d.healthStop)
		d.healthStop = nil
	}
	if d.scaleStop != nil {
		close(d.scaleStop)
		d.scaleStop = nil
	}
}

/**
 * Component lifecycle orchestration over the registry
 * @description
 * - Deployment, scaling and health are modeled in memory, not executed against
 *   real infrastructure
 * - Every mutating operation that fails emits the paired "...Failed" event in
 *   addition to the error or failure result it returns
 * - Mutations complete their state transition before returning
 */
type ComponentManager struct {
	mu           sync.Mutex
	reg          *registry.Registry
	deployments  map[string]*deployment
	snapshots    map[string]models.ComponentDefinition
	emit         EventSink
	pollInterval time.Duration
}

/**
 * Create a component manager
 * @param {*registry.Registry} reg - Backing component registry
 * @param {EventSink} emit - Event sink, nil for none
 * @param {time.Duration} pollInterval - Period of health and auto-scaling polling
 */
func NewComponentManager(reg *registry.Registry, emit EventSink, pollInterval time.Duration) *ComponentManager {
	if emit == nil {
		emit = func(models.SystemEvent) {}
	}
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &ComponentManager{
		reg:          reg,
		deployments:  make(map[string]*deployment),
		snapshots:    make(map[string]models.ComponentDefinition),
		emit:         emit,
		pollInterval: pollInterval,
	}
}

func (m *ComponentManager) emitEvent(eventType, componentID string, severity models.Severity, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["componentId"] = componentID
	m.emit(models.SystemEvent{
		Type:     eventType,
		Source:   "component-manager",
		Data:     data,
		Severity: severity,
	})
}

func (m *ComponentManager) emitFailure(eventType, componentID string, err error) {
	m.emitEvent(eventType, componentID, models.SeverityError, map[string]interface{}{
		"error": err.Error(),
	})
}

/**
 * Register a component definition and validate its declared dependencies
 * @param {models.ComponentDefinition} def - Definition to register
 * @returns {error} Registry validation error, duplicate error, or
 *   *DependencyValidationError when declared dependencies are unregistered
 * @description On a dependency validation failure the definition stays
 *   registered; the registry tolerates dangling edges and Validate reports them
 */
func (m *ComponentManager) RegisterComponent(def models.ComponentDefinition) error {
	if err := m.reg.Register(def); err != nil {
		m.emitFailure(models.EventComponentRegistrationFailed, def.ID, err)
		return err
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !m.reg.Exists(dep) {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		err := &DependencyValidationError{ComponentID: def.ID, Missing: missing}
		m.emitFailure(models.EventComponentRegistrationFailed, def.ID, err)
		return err
	}

	m.emitEvent(models.EventComponentRegistered, def.ID, models.SeverityInfo, map[string]interface{}{
		"version": def.Version,
	})
	logger.Infof("component '%s' registered (version %s)", def.ID, def.Version)
	return nil
}

/**
 * Deploy a component (modeled rollout)
 * @param {string} id - Component id
 * @param {models.DeploymentConfig} cfg - Strategy and environment
 * @returns {models.DeploymentResult} Failed result, never an error, for unknown ids
 * @description Rolls out scaling.minReplicas replicas (at least one), starts
 *   health polling and, when maxReplicas exceeds minReplicas, auto-scaling polling
 */
func (m *ComponentManager) DeployComponent(id string, cfg models.DeploymentConfig) models.DeploymentResult {
	def, ok := m.reg.Get(id)
	if !ok {
		err := fmt.Errorf("%w: '%s'", registry.ErrComponentNotFound, id)
		m.emitFailure(models.EventComponentDeployFailed, id, err)
		return models.DeploymentResult{
			Success:     false,
			ComponentID: id,
			Message:     err.Error(),
			Timestamp:   time.Now(),
		}
	}

	replicas := def.Scaling.MinReplicas
	if replicas < 1 {
		replicas = 1
	}

	m.mu.Lock()
	if existing, deployed := m.deployments[id]; deployed {
		existing.stopPollers()
	}
	dep := &deployment{
		replicas:    replicas,
		status:      models.DeployStatusRunning,
		startTime:   time.Now(),
		strategy:    cfg.Strategy,
		environment: cfg.Environment,
		healthStop:  make(chan struct{}),
	}
	m.deployments[id] = dep
	go m.healthPollLoop(id, dep.healthStop)
	if def.Scaling.MaxReplicas > def.Scaling.MinReplicas {
		dep.scaleStop = make(chan struct{})
		go m.autoScaleLoop(id, dep.scaleStop)
	}
	m.mu.Unlock()

	m.emitEvent(models.EventComponentDeployed, id, models.SeverityInfo, map[string]interface{}{
		"replicas": replicas,
		"strategy": cfg.Strategy,
	})
	logger.Infof("component '%s' deployed with %d replicas", id, replicas)
	return models.DeploymentResult{
		Success:     true,
		ComponentID: id,
		Replicas:    replicas,
		Message:     fmt.Sprintf("deployed %d replicas", replicas),
		Timestamp:   time.Now(),
	}
}

/**
 * Scale a component
 * @param {string} id - Component id
 * @param {models.ScalingConfig} cfg - Explicit replica count or replacement policy
 * @returns {error} registry.ErrComponentNotFound when unregistered
 * @description Explicit counts are clamped into [minReplicas, maxReplicas];
 *   a policy replaces the component's scaling block and re-clamps current
 *   replicas. A policy-only scale of an undeployed component updates the
 *   definition and reports the new bounds, not a replica count.
 */
func (m *ComponentManager) ScaleComponent(id string, cfg models.ScalingConfig) error {
	def, ok := m.reg.Get(id)
	if !ok {
		err := fmt.Errorf("%w: '%s'", registry.ErrComponentNotFound, id)
		m.emitFailure(models.EventComponentScaleFailed, id, err)
		return err
	}

	scaling := def.Scaling
	if cfg.Policy != nil {
		patch := models.ComponentPatch{Scaling: cfg.Policy}
		if err := m.reg.Update(id, patch); err != nil {
			m.emitFailure(models.EventComponentScaleFailed, id, err)
			return err
		}
		scaling = *cfg.Policy
	}

	m.mu.Lock()
	dep, deployed := m.deployments[id]
	var applied int
	if deployed {
		target := dep.replicas
		if cfg.Replicas != nil {
			target = *cfg.Replicas
		}
		dep.replicas = clamp(target, scaling.MinReplicas, scaling.MaxReplicas)
		applied = dep.replicas
	}
	m.mu.Unlock()

	if !deployed && cfg.Replicas != nil {
		err := fmt.Errorf("component '%s' is not deployed", id)
		m.emitFailure(models.EventComponentScaleFailed, id, err)
		return err
	}

	data := map[string]interface{}{}
	if deployed {
		data["replicas"] = applied
	}
	if cfg.Policy != nil {
		data["minReplicas"] = scaling.MinReplicas
		data["maxReplicas"] = scaling.MaxReplicas
	}
	m.emitEvent(models.EventComponentScaled, id, models.SeverityInfo, data)
	if deployed {
		logger.Infof("component '%s' scaled to %d replicas", id, applied)
	} else {
		logger.Infof("component '%s' scaling policy replaced", id)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if hi >= lo && v > hi {
		return hi
	}
	return v
}

/**
 * Run the health checks of one component
 * @param {string} id - Component id
 * @returns {models.ComponentHealth} Aggregate health; unknown ids yield
 *   unhealthy with exactly one failing check rather than an error
 */
func (m *ComponentManager) HealthCheck(id string) models.ComponentHealth {
	def, ok := m.reg.Get(id)
	if !ok {
		return models.ComponentHealth{
			ComponentID: id,
			Status:      models.HealthUnhealthy,
			Checks: []models.HealthCheckResult{
				{Name: "registration", Passed: false, Message: fmt.Sprintf("component '%s' is not registered", id)},
			},
			LastUpdated: time.Now(),
		}
	}

	m.mu.Lock()
	dep, deployed := m.deployments[id]
	var replicas int
	var status string
	if deployed {
		replicas = dep.replicas
		status = dep.status
	}
	m.mu.Unlock()

	checks := []models.HealthCheckResult{
		{Name: "registration", Passed: true},
	}
	if !deployed {
		checks = append(checks, models.HealthCheckResult{
			Name: "deployment", Passed: false, Message: "component is not deployed",
		})
	} else if status != models.DeployStatusRunning {
		checks = append(checks, models.HealthCheckResult{
			Name: "deployment", Passed: false, Message: fmt.Sprintf("deployment status is %s", status),
		})
	} else {
		checks = append(checks, models.HealthCheckResult{Name: "deployment", Passed: true})
		passed := replicas >= def.Scaling.MinReplicas
		check := models.HealthCheckResult{Name: "replicas", Passed: passed}
		if !passed {
			check.Message = fmt.Sprintf("%d replicas below minimum %d", replicas, def.Scaling.MinReplicas)
		}
		checks = append(checks, check)
	}

	failed := 0
	for _, c := range checks {
		if !c.Passed {
			failed++
		}
	}
	overall := models.HealthHealthy
	if failed > 0 {
		overall = models.HealthDegraded
	}
	if failed == len(checks) {
		overall = models.HealthUnhealthy
	}

	health := models.ComponentHealth{
		ComponentID: id,
		Status:      overall,
		Checks:      checks,
		LastUpdated: time.Now(),
		Version:     def.Version,
	}

	m.mu.Lock()
	if dep, ok := m.deployments[id]; ok {
		h := health
		dep.lastHealth = &h
	}
	m.mu.Unlock()
	return health
}

/**
 * Apply a partial update to a component definition
 * @param {string} id - Component id
 * @param {models.ComponentPatch} patch - Fields to change; nil fields untouched
 * @returns {error} Not-found, validation, or cycle error
 * @description The pre-update definition becomes the single-level rollback
 *   snapshot. A dependency edit that would close a cycle is rejected so the
 *   registry graph stays acyclic.
 */
func (m *ComponentManager) UpdateComponent(id string, patch models.ComponentPatch) error {
	current, ok := m.reg.Get(id)
	if !ok {
		err := fmt.Errorf("%w: '%s'", registry.ErrComponentNotFound, id)
		m.emitFailure(models.EventComponentUpdateFailed, id, err)
		return err
	}

	merged := patch.Apply(current)
	if err := registry.Validate(merged); err != nil {
		m.emitFailure(models.EventComponentUpdateFailed, id, err)
		return err
	}
	if patch.Dependencies != nil {
		if cycle := m.wouldCreateCycle(merged); cycle != "" {
			err := fmt.Errorf("update of '%s' would create a circular dependency: %s", id, cycle)
			m.emitFailure(models.EventComponentUpdateFailed, id, err)
			return err
		}
	}

	m.mu.Lock()
	m.snapshots[id] = current.Clone()
	m.mu.Unlock()

	if err := m.reg.Update(id, patch); err != nil {
		m.mu.Lock()
		delete(m.snapshots, id)
		m.mu.Unlock()
		m.emitFailure(models.EventComponentUpdateFailed, id, err)
		return err
	}

	m.emitEvent(models.EventComponentUpdated, id, models.SeverityInfo, map[string]interface{}{
		"version": merged.Version,
	})
	logger.Infof("component '%s' updated", id)
	return nil
}

// wouldCreateCycle checks the registry graph with merged substituted in.
// Returns the cycle path when one exists, empty string otherwise.
func (m *ComponentManager) wouldCreateCycle(merged models.ComponentDefinition) string {
	edges := make(map[string][]string)
	for _, def := range m.reg.List() {
		edges[def.ID] = def.Dependencies
	}
	edges[merged.ID] = merged.Dependencies

	const (
		onStack = 1
		done    = 2
	)
	state := make(map[string]int)
	var cycle string
	var visit func(id string, path []string) bool
	visit = func(id string, path []string) bool {
		switch state[id] {
		case done:
			return false
		case onStack:
			cycle = strings.Join(append(path, id), " -> ")
			return true
		}
		state[id] = onStack
		next := append(append([]string(nil), path...), id)
		for _, dep := range edges[id] {
			if visit(dep, next) {
				return true
			}
		}
		state[id] = done
		return false
	}
	if visit(merged.ID, nil) {
		return cycle
	}
	return ""
}

/**
 * Restore the single-level rollback snapshot of a component
 * @returns {error} Fails with "no rollback version available" when no update
 *   preceded the rollback
 */
func (m *ComponentManager) RollbackComponent(id string) error {
	m.mu.Lock()
	snapshot, ok := m.snapshots[id]
	if ok {
		delete(m.snapshots, id)
	}
	m.mu.Unlock()

	if !ok {
		err := fmt.Errorf("no rollback version available for component '%s'", id)
		m.emitFailure(models.EventComponentRollbackFailed, id, err)
		return err
	}

	patch := models.ComponentPatch{
		Name:         &snapshot.Name,
		Version:      &snapshot.Version,
		Type:         &snapshot.Type,
		Dependencies: &snapshot.Dependencies,
		Resources:    &snapshot.Resources,
		HealthCheck:  &snapshot.HealthCheck,
		Scaling:      &snapshot.Scaling,
	}
	if err := m.reg.Update(id, patch); err != nil {
		m.emitFailure(models.EventComponentRollbackFailed, id, err)
		return err
	}

	m.emitEvent(models.EventComponentRolledBack, id, models.SeverityInfo, map[string]interface{}{
		"version": snapshot.Version,
	})
	logger.Infof("component '%s' rolled back to version %s", id, snapshot.Version)
	return nil
}

/**
 * Remove a component
 * @description Stops health and auto-scaling polling before unregistering so
 *   no poll reads a half-removed component
 */
func (m *ComponentManager) RemoveComponent(id string) error {
	m.mu.Lock()
	if dep, ok := m.deployments[id]; ok {
		dep.stopPollers()
		delete(m.deployments, id)
	}
	delete(m.snapshots, id)
	m.mu.Unlock()

	if err := m.reg.Unregister(id); err != nil {
		m.emitFailure(models.EventComponentRemoveFailed, id, err)
		return err
	}

	m.emitEvent(models.EventComponentRemoved, id, models.SeverityInfo, nil)
	logger.Infof("component '%s' removed", id)
	return nil
}

/**
 * Composite read-only status view
 * @returns {models.ComponentStatus} Nil-valued fields for unknown ids, never an error
 */
func (m *ComponentManager) GetComponentStatus(id string) models.ComponentStatus {
	status := models.ComponentStatus{ComponentID: id}
	def, ok := m.reg.Get(id)
	if !ok {
		return status
	}
	status.Definition = &def

	m.mu.Lock()
	if dep, deployed := m.deployments[id]; deployed {
		status.Deployed = true
		status.Replicas = dep.replicas
		status.Status = dep.status
		status.StartTime = dep.startTime.Format(time.RFC3339)
		if dep.lastHealth != nil {
			h := *dep.lastHealth
			status.Health = &h
		}
	}
	m.mu.Unlock()
	return status
}

/**
 * Communication view: dependency and dependent edges of one component
 * @returns {models.ComponentCommunication} Nil-valued fields for unknown ids
 */
func (m *ComponentManager) GetComponentCommunication(id string) models.ComponentCommunication {
	comm := models.ComponentCommunication{ComponentID: id}
	def, ok := m.reg.Get(id)
	if !ok {
		return comm
	}
	comm.Dependencies = append([]string(nil), def.Dependencies...)
	for _, dependent := range m.reg.FindDependents(id) {
		comm.Dependents = append(comm.Dependents, dependent.ID)
	}
	if def.Type == models.TypeService {
		comm.Endpoint = fmt.Sprintf("http://%s:8080", id)
	}
	return comm
}

/**
 * Start a component: mark the deployment running, deploying first if needed
 */
func (m *ComponentManager) StartComponent(id string) error {
	m.mu.Lock()
	dep, deployed := m.deployments[id]
	if deployed {
		dep.status = models.DeployStatusRunning
		dep.startTime = time.Now()
	}
	m.mu.Unlock()
	if deployed {
		return nil
	}
	result := m.DeployComponent(id, models.DeploymentConfig{})
	if !result.Success {
		return fmt.Errorf("%s", result.Message)
	}
	return nil
}

// StopComponent marks the deployment stopped and halts its pollers.
func (m *ComponentManager) StopComponent(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	dep, deployed := m.deployments[id]
	if !deployed {
		return fmt.Errorf("component '%s' is not deployed", id)
	}
	dep.stopPollers()
	dep.status = models.DeployStatusStopped
	return nil
}

// RestartComponent stops then starts a deployed component.
func (m *ComponentManager) RestartComponent(id string) error {
	if err := m.StopComponent(id); err != nil {
		return err
	}
	return m.StartComponent(id)
}

// ConfigureComponent merges environment values into a deployment.
func (m *ComponentManager) ConfigureComponent(id string, environment map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	dep, deployed := m.deployments[id]
	if !deployed {
		return fmt.Errorf("component '%s' is not deployed", id)
	}
	if dep.environment == nil {
		dep.environment = make(map[string]string)
	}
	for k, v := range environment {
		dep.environment[k] = v
	}
	return nil
}

// DeployedCount reports how many components have a live deployment.
func (m *ComponentManager) DeployedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deployments)
}

// StopAll halts every poller; used at engine shutdown.
func (m *ComponentManager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, dep := range m.deployments {
		dep.stopPollers()
	}
}

// healthPollLoop periodically refreshes the cached health of one deployment.
func (m *ComponentManager) healthPollLoop(id string, stop <-chan struct{}) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			health := m.HealthCheck(id)
			if health.Status != models.HealthHealthy {
				logger.Warnf("component '%s' health: %s", id, health.Status)
			}
		}
	}
}

// autoScaleLoop models CPU-driven replica adjustment inside [min,max].
func (m *ComponentManager) autoScaleLoop(id string, stop <-chan struct{}) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			def, ok := m.reg.Get(id)
			if !ok {
				return
			}
			target := 70
			if def.Scaling.TargetCPUUtilization != nil {
				target = *def.Scaling.TargetCPUUtilization
			}
			// Modeled utilization; stands in for a metrics backend.
			utilization := 40 + rand.Intn(60)

			m.mu.Lock()
			dep, deployed := m.deployments[id]
			if deployed && dep.status == models.DeployStatusRunning {
				if utilization > target && dep.replicas < def.Scaling.MaxReplicas {
					dep.replicas++
					logger.Debugf("component '%s' scaled up to %d (cpu %d%%)", id, dep.replicas, utilization)
				} else if utilization < target/2 && dep.replicas > def.Scaling.MinReplicas {
					dep.replicas--
					logger.Debugf("component '%s' scaled down to %d (cpu %d%%)", id, dep.replicas, utilization)
				}
			}
			m.mu.Unlock()
		}
	}
}
