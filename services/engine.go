package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"cicd-orchestrator/internal/circuit"
	"cicd-orchestrator/internal/config"
	"cicd-orchestrator/internal/events"
	"cicd-orchestrator/internal/logger"
	"cicd-orchestrator/internal/models"
	"cicd-orchestrator/internal/queue"
	"cicd-orchestrator/internal/registry"
	"cicd-orchestrator/internal/resolver"
)

// Breaker names, one per external collaborator.
const (
	BreakerReadmeParser      = "readme-parser"
	BreakerFrameworkDetector = "framework-detector"
	BreakerYamlGenerator     = "yaml-generator"
)

// Listener receives system events of the type it registered for.
type Listener func(models.SystemEvent)

// queuedRequest pairs a workflow request with its caller's result channel.
type queuedRequest struct {
	req    models.WorkflowRequest
	result chan models.WorkflowResult
}

/**
 * Engine construction options
 * @description Zero values fall back to the application configuration;
 *   collaborator fields fall back to the bundled simulated implementations
 */
type EngineOptions struct {
	Registry            *registry.Registry
	Parser              ReadmeParser
	Detector            FrameworkDetector
	Generator           YAMLGenerator
	BreakerThreshold    int
	BreakerResetTimeout time.Duration
	CollaboratorTimeout time.Duration
	PollInterval        time.Duration
	MaintenanceInterval time.Duration
	EventRetention      time.Duration
}

/**
 * Orchestration engine: the single logical owner of all in-process state
 * @description
 * - Workflow requests go through the priority queue; one dispatcher goroutine
 *   drains it so priority stays observable under concurrent submission
 * - Each external collaborator is wrapped by a named circuit breaker and an
 *   engine-enforced timeout
 * - Every emitted event reaches the store and the registered listeners
 */
type Engine struct {
	reg      *registry.Registry
	res      *resolver.Resolver
	store    *events.Store
	queue    *queue.PriorityQueue
	manager  *ComponentManager
	parser   ReadmeParser
	detector FrameworkDetector
	gen      YAMLGenerator
	breakers map[string]*circuit.Breaker

	mu             sync.Mutex
	listeners      map[string]map[int]Listener
	nextListenerID int
	completed      int64
	failed         int64
	initialized    bool
	startTime      time.Time

	collabTimeout       time.Duration
	maintenanceInterval time.Duration
	eventRetention      time.Duration

	wake   chan struct{}
	stopCh chan struct{}
	wg     sync.WaitGroup
}

var (
	engineInstance *Engine
	engineOnce     sync.Once
)

// GetEngine returns the process-wide engine, building it from the application
// configuration on first use.
func GetEngine() *Engine {
	engineOnce.Do(func() {
		engineInstance = NewEngine(EngineOptions{})
	})
	return engineInstance
}

/**
 * Create an orchestration engine
 * @param {EngineOptions} opts - Overrides; zero values take configured defaults
 */
func NewEngine(opts EngineOptions) *Engine {
	cfg := &config.Config
	if opts.Registry == nil {
		opts.Registry = registry.New()
	}
	if opts.Parser == nil {
		opts.Parser = NewSimulatedReadmeParser()
	}
	if opts.Detector == nil {
		opts.Detector = NewSimulatedFrameworkDetector()
	}
	if opts.Generator == nil {
		opts.Generator = NewSimulatedYAMLGenerator()
	}
	if opts.BreakerThreshold <= 0 {
		opts.BreakerThreshold = cfg.Breaker.FailureThreshold
	}
	if opts.BreakerResetTimeout <= 0 {
		opts.BreakerResetTimeout = cfg.BreakerResetTimeout()
	}
	if opts.CollaboratorTimeout <= 0 {
		opts.CollaboratorTimeout = cfg.CollaboratorTimeout()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = cfg.HealthPollInterval()
	}
	if opts.MaintenanceInterval <= 0 {
		opts.MaintenanceInterval = cfg.MaintenanceInterval()
	}
	if opts.EventRetention <= 0 {
		opts.EventRetention = cfg.EventRetention()
	}

	e := &Engine{
		reg:                 opts.Registry,
		res:                 resolver.New(opts.Registry),
		store:               events.NewStore(),
		queue:               queue.New(),
		parser:              opts.Parser,
		detector:            opts.Detector,
		gen:                 opts.Generator,
		listeners:           make(map[string]map[int]Listener),
		collabTimeout:       opts.CollaboratorTimeout,
		maintenanceInterval: opts.MaintenanceInterval,
		eventRetention:      opts.EventRetention,
		wake:                make(chan struct{}, 1024),
	}
	e.breakers = map[string]*circuit.Breaker{
		BreakerReadmeParser:      circuit.NewBreaker(BreakerReadmeParser, opts.BreakerThreshold, opts.BreakerResetTimeout),
		BreakerFrameworkDetector: circuit.NewBreaker(BreakerFrameworkDetector, opts.BreakerThreshold, opts.BreakerResetTimeout),
		BreakerYamlGenerator:     circuit.NewBreaker(BreakerYamlGenerator, opts.BreakerThreshold, opts.BreakerResetTimeout),
	}
	e.manager = NewComponentManager(opts.Registry, e.HandleSystemEvent, opts.PollInterval)
	return e
}

// Registry exposes the backing component registry.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Resolver exposes the dependency resolver bound to the registry.
func (e *Engine) Resolver() *resolver.Resolver { return e.res }

// ComponentManager exposes the component lifecycle manager.
func (e *Engine) ComponentManager() *ComponentManager { return e.manager }

/**
 * Start the dispatcher and the periodic maintenance loop
 * @description Idempotent; a second call is a no-op
 */
func (e *Engine) Initialize() {
	e.mu.Lock()
	if e.initialized {
		e.mu.Unlock()
		return
	}
	e.initialized = true
	e.startTime = time.Now()
	e.stopCh = make(chan struct{})
	e.mu.Unlock()

	e.wg.Add(2)
	go e.dispatchLoop()
	go e.maintenanceLoop()
	logger.Info("orchestration engine initialized")
}

/**
 * Stop background work and clear in-memory state
 * @description Pending queued requests are answered with a failure result so
 *   no caller blocks forever; event history and queue counters are cleared
 */
func (e *Engine) Shutdown() {
	e.mu.Lock()
	if !e.initialized {
		e.mu.Unlock()
		return
	}
	e.initialized = false
	stop := e.stopCh
	e.mu.Unlock()

	close(stop)
	e.wg.Wait()
	e.manager.StopAll()

	for {
		item, ok := e.queue.Dequeue()
		if !ok {
			break
		}
		qr := item.(*queuedRequest)
		qr.result <- models.WorkflowResult{
			Success: false,
			Errors:  []string{"engine shut down before the request was processed"},
			TraceID: qr.req.Context.TraceID,
		}
	}

	e.store.Clear()
	e.mu.Lock()
	e.completed = 0
	e.failed = 0
	e.mu.Unlock()
	logger.Info("orchestration engine shut down")
}

/**
 * Process one workflow request
 * @param {models.WorkflowRequest} req - Request; priority critical/high/normal/low
 * @returns {models.WorkflowResult} Success with data, or failure with a
 *   non-empty error list; this method never panics outward
 * @description Enqueues onto the priority queue and blocks until the
 *   dispatcher has produced the result. When the engine is not initialized the
 *   request is executed inline.
 */
func (e *Engine) ProcessWorkflow(req models.WorkflowRequest) models.WorkflowResult {
	if req.Context.TraceID == "" {
		req.Context.TraceID = uuid.NewString()
	}
	if req.Context.Timestamp.IsZero() {
		req.Context.Timestamp = time.Now()
	}

	qr := &queuedRequest{req: req, result: make(chan models.WorkflowResult, 1)}

	// The initialized check and the enqueue happen under the same lock
	// Shutdown flips the flag under. A request therefore either lands on the
	// queue before Shutdown begins, where the dispatcher or the shutdown drain
	// answers it, or it sees the flag down and runs inline.
	e.mu.Lock()
	if !e.initialized {
		e.mu.Unlock()
		return e.executeWorkflow(req)
	}
	e.queue.Enqueue(qr, queue.PriorityFromString(req.Priority))
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
	return <-qr.result
}

// dispatchLoop drains the priority queue one request at a time.
func (e *Engine) dispatchLoop() {
	defer e.wg.Done()
	for {
		select {
		case <-e.stopCh:
			return
		case <-e.wake:
			for {
				item, ok := e.queue.Dequeue()
				if !ok {
					break
				}
				qr := item.(*queuedRequest)
				qr.result <- e.executeWorkflow(qr.req)
			}
		}
	}
}

// maintenanceLoop periodically runs the three maintenance tasks.
func (e *Engine) maintenanceLoop() {
	defer e.wg.Done()
	ticker := time.NewTicker(e.maintenanceInterval)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			for _, task := range []string{"health-check", "cleanup", "backup"} {
				result := e.executeWorkflow(models.WorkflowRequest{
					Type:     "system-maintenance",
					Payload:  map[string]interface{}{"task": task},
					Priority: "low",
					Context: models.RequestContext{
						ID:        uuid.NewString(),
						Timestamp: time.Now(),
						TraceID:   uuid.NewString(),
					},
				})
				if !result.Success {
					logger.Warnf("maintenance task '%s' failed: %v", task, result.Errors)
				}
			}
		}
	}
}

// executeWorkflow routes one request to its handler and records the outcome.
func (e *Engine) executeWorkflow(req models.WorkflowRequest) (result models.WorkflowResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("workflow '%s' panicked: %v", req.Type, r)
			result = models.WorkflowResult{
				Success: false,
				Errors:  []string{fmt.Sprintf("internal error: %v", r)},
			}
		}
		result.TraceID = req.Context.TraceID
		result.Metrics.Duration = time.Since(start)
		RecordWorkflow(req.Type, result.Success, result.Metrics.Duration.Seconds())

		outcome := models.EventWorkflowCompleted
		severity := models.SeverityInfo
		data := map[string]interface{}{
			"workflowType": req.Type,
			"traceId":      req.Context.TraceID,
			"durationMs":   result.Metrics.Duration.Milliseconds(),
		}
		if !result.Success {
			outcome = models.EventWorkflowFailed
			severity = models.SeverityError
			data["errors"] = result.Errors
		}
		e.HandleSystemEvent(models.SystemEvent{
			Type:     outcome,
			Source:   "engine",
			Data:     data,
			Severity: severity,
		})
	}()

	e.HandleSystemEvent(models.SystemEvent{
		Type:   models.EventWorkflowStarted,
		Source: "engine",
		Data: map[string]interface{}{
			"workflowType": req.Type,
			"traceId":      req.Context.TraceID,
		},
		Severity: models.SeverityInfo,
	})

	switch req.Type {
	case "readme-to-cicd":
		return e.runReadmePipeline(req)
	case "system-maintenance":
		return e.runMaintenance(req)
	default:
		return models.WorkflowResult{
			Success: false,
			Errors:  []string{fmt.Sprintf("unknown workflow type '%s'", req.Type)},
		}
	}
}

// callCollaborator runs op under the named breaker with the engine timeout.
// A timeout emits workflow.timeout and fails the call without cancelling the
// in-flight operation.
func (e *Engine) callCollaborator(name, traceID string, op func() error) error {
	b := e.breakers[name]
	return b.Execute(func() error {
		done := make(chan error, 1)
		go func() { done <- op() }()
		select {
		case err := <-done:
			return err
		case <-time.After(e.collabTimeout):
			e.HandleSystemEvent(models.SystemEvent{
				Type:   models.EventWorkflowTimeout,
				Source: "engine",
				Data: map[string]interface{}{
					"collaborator": name,
					"traceId":      traceID,
					"timeoutMs":    e.collabTimeout.Milliseconds(),
				},
				Severity: models.SeverityWarning,
			})
			return fmt.Errorf("collaborator '%s' timed out after %s", name, e.collabTimeout)
		}
	})
}

// runReadmePipeline chains parser, detector and generator.
func (e *Engine) runReadmePipeline(req models.WorkflowRequest) models.WorkflowResult {
	readmePath := "README.md"
	if p, ok := req.Payload["readmePath"].(string); ok && p != "" {
		readmePath = p
	}
	var options map[string]interface{}
	if o, ok := req.Payload["options"].(map[string]interface{}); ok {
		options = o
	}
	traceID := req.Context.TraceID

	var parsed *models.ParseResult
	err := e.callCollaborator(BreakerReadmeParser, traceID, func() error {
		var opErr error
		parsed, opErr = e.parser.ParseFile(readmePath)
		return opErr
	})
	if err != nil {
		return failureResult("readme parsing failed: %v", err)
	}
	if parsed == nil || !parsed.Success {
		errs := []string{"readme parsing produced no project information"}
		if parsed != nil && len(parsed.Errors) > 0 {
			errs = parsed.Errors
		}
		return models.WorkflowResult{Success: false, Errors: errs}
	}

	var detection *models.DetectionResult
	err = e.callCollaborator(BreakerFrameworkDetector, traceID, func() error {
		var opErr error
		detection, opErr = e.detector.DetectFrameworks(parsed.Data)
		return opErr
	})
	if err != nil {
		return failureResult("framework detection failed: %v", err)
	}
	if detection == nil {
		return failureResult("framework detection returned no result for '%s'", parsed.Data.Name)
	}

	var file models.WorkflowFile
	err = e.callCollaborator(BreakerYamlGenerator, traceID, func() error {
		var opErr error
		file, opErr = e.gen.GenerateWorkflow(detection, options)
		return opErr
	})
	if err != nil {
		return failureResult("workflow generation failed: %v", err)
	}

	return models.WorkflowResult{
		Success: true,
		Data: map[string]interface{}{
			"project":      detection.ProjectName,
			"frameworks":   detection.Frameworks,
			"workflowFile": file,
		},
	}
}

// runMaintenance routes the task payload field to its handler.
func (e *Engine) runMaintenance(req models.WorkflowRequest) models.WorkflowResult {
	task := "health-check"
	if t, ok := req.Payload["task"].(string); ok && t != "" {
		task = t
	}
	switch task {
	case "health-check":
		return e.maintenanceHealthCheck()
	case "cleanup":
		pruned := e.store.PruneBefore(time.Now().Add(-e.eventRetention))
		return models.WorkflowResult{
			Success: true,
			Data: map[string]interface{}{
				"task":         "cleanup",
				"prunedEvents": pruned,
			},
		}
	case "backup":
		return models.WorkflowResult{
			Success: true,
			Data: map[string]interface{}{
				"task":       "backup",
				"components": e.reg.Count(),
				"deployed":   e.manager.DeployedCount(),
				"events":     e.store.Count(),
				"takenAt":    time.Now().Format(time.RFC3339),
			},
		}
	default:
		return failureResult("unknown maintenance task '%s'", task)
	}
}

func (e *Engine) maintenanceHealthCheck() models.WorkflowResult {
	var healthy, degraded, unhealthy int
	statuses := make(map[string]string)
	for _, def := range e.reg.List() {
		health := e.manager.HealthCheck(def.ID)
		statuses[def.ID] = health.Status
		switch health.Status {
		case models.HealthHealthy:
			healthy++
		case models.HealthDegraded:
			degraded++
		default:
			unhealthy++
		}
	}
	return models.WorkflowResult{
		Success: true,
		Data: map[string]interface{}{
			"task":      "health-check",
			"healthy":   healthy,
			"degraded":  degraded,
			"unhealthy": unhealthy,
			"statuses":  statuses,
		},
	}
}

func failureResult(format string, args ...interface{}) models.WorkflowResult {
	return models.WorkflowResult{
		Success: false,
		Errors:  []string{fmt.Sprintf(format, args...)},
	}
}

/**
 * Route a component operation to the component manager
 * @param {models.ComponentOperation} op - Action, component id, payload
 * @returns {models.OperationResult} Always a result, never a panic; unknown
 *   component ids produce a failed result
 */
func (e *Engine) ManageComponents(op models.ComponentOperation) models.OperationResult {
	var err error
	message := fmt.Sprintf("%s '%s' succeeded", op.Action, op.ComponentID)

	switch op.Action {
	case "start":
		err = e.manager.StartComponent(op.ComponentID)
	case "stop":
		err = e.manager.StopComponent(op.ComponentID)
	case "restart":
		err = e.manager.RestartComponent(op.ComponentID)
	case "deploy":
		result := e.manager.DeployComponent(op.ComponentID, decodeDeploymentConfig(op.Payload))
		if !result.Success {
			err = fmt.Errorf("%s", result.Message)
		} else {
			message = result.Message
		}
	case "scale":
		var cfg models.ScalingConfig
		cfg, err = decodeScalingConfig(op.Payload)
		if err == nil {
			err = e.manager.ScaleComponent(op.ComponentID, cfg)
		}
	case "update":
		var patch models.ComponentPatch
		patch, err = decodeComponentPatch(op.Payload)
		if err == nil {
			err = e.manager.UpdateComponent(op.ComponentID, patch)
		}
	case "configure":
		err = e.manager.ConfigureComponent(op.ComponentID, decodeEnvironment(op.Payload))
	default:
		err = fmt.Errorf("unknown action '%s'", op.Action)
	}

	if err != nil {
		return models.OperationResult{Success: false, Message: err.Error(), Timestamp: time.Now()}
	}
	return models.OperationResult{Success: true, Message: message, Timestamp: time.Now()}
}

func decodeDeploymentConfig(payload map[string]interface{}) models.DeploymentConfig {
	var cfg models.DeploymentConfig
	remarshal(payload, &cfg)
	return cfg
}

func decodeScalingConfig(payload map[string]interface{}) (models.ScalingConfig, error) {
	var cfg models.ScalingConfig
	if err := remarshal(payload, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid scaling payload: %v", err)
	}
	if cfg.Replicas == nil && cfg.Policy == nil {
		return cfg, fmt.Errorf("scaling payload needs 'replicas' or 'policy'")
	}
	return cfg, nil
}

func decodeComponentPatch(payload map[string]interface{}) (models.ComponentPatch, error) {
	var patch models.ComponentPatch
	if err := remarshal(payload, &patch); err != nil {
		return patch, fmt.Errorf("invalid update payload: %v", err)
	}
	return patch, nil
}

func decodeEnvironment(payload map[string]interface{}) map[string]string {
	env := make(map[string]string)
	raw, ok := payload["environment"].(map[string]interface{})
	if !ok {
		raw = payload
	}
	for k, v := range raw {
		env[k] = fmt.Sprintf("%v", v)
	}
	return env
}

// remarshal converts an untyped payload into a typed struct via JSON.
func remarshal(in interface{}, out interface{}) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

/**
 * Record a system event and dispatch it to listeners
 * @param {models.SystemEvent} ev - Event; the store stamps timestamp and id
 * @description
 * - workflow.completed / workflow.failed bump the queue counters
 * - Listener dispatch is synchronous in registration order over a snapshot
 *   taken at dispatch start; a listener registered during dispatch sees only
 *   the next event
 * - A panicking listener is logged and isolated
 */
func (e *Engine) HandleSystemEvent(ev models.SystemEvent) {
	stored := e.store.Append(ev)

	e.mu.Lock()
	switch stored.Type {
	case models.EventWorkflowCompleted:
		e.completed++
	case models.EventWorkflowFailed:
		e.failed++
	}
	byID := e.listeners[stored.Type]
	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	snapshot := make([]Listener, 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		snapshot = append(snapshot, byID[id])
	}
	e.mu.Unlock()

	for _, fn := range snapshot {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("event listener for '%s' panicked: %v", stored.Type, r)
				}
			}()
			fn(stored)
		}()
	}
}

/**
 * Register an event listener
 * @param {string} eventType - Exact event type to listen for
 * @returns {int} Listener id for Off
 */
func (e *Engine) On(eventType string, fn Listener) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextListenerID++
	if e.listeners[eventType] == nil {
		e.listeners[eventType] = make(map[int]Listener)
	}
	e.listeners[eventType][e.nextListenerID] = fn
	return e.nextListenerID
}

// Off removes a listener; a no-op for an unregistered pair.
func (e *Engine) Off(eventType string, id int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if byID, ok := e.listeners[eventType]; ok {
		delete(byID, id)
		if len(byID) == 0 {
			delete(e.listeners, eventType)
		}
	}
}

// GetCircuitBreakerStatus snapshots every collaborator breaker.
func (e *Engine) GetCircuitBreakerStatus() map[string]models.BreakerStatus {
	out := make(map[string]models.BreakerStatus, len(e.breakers))
	for name, b := range e.breakers {
		out[name] = b.Snapshot()
	}
	return out
}

// GetQueueStatus snapshots queue depth and workflow counters.
func (e *Engine) GetQueueStatus() models.QueueStatus {
	e.mu.Lock()
	completed, failed := e.completed, e.failed
	e.mu.Unlock()
	return models.QueueStatus{
		Pending:   e.queue.Size(),
		Completed: completed,
		Failed:    failed,
	}
}

// GetEventHistory returns a defensive copy of the retained events.
func (e *Engine) GetEventHistory() []models.SystemEvent {
	return e.store.Events()
}

// EventStore exposes the backing store for filtered reads.
func (e *Engine) EventStore() *events.Store {
	return e.store
}

// GetState snapshots the whole engine for the state endpoint and CLI.
func (e *Engine) GetState() models.EngineState {
	e.mu.Lock()
	initialized := e.initialized
	startTime := e.startTime
	e.mu.Unlock()
	return models.EngineState{
		StartTime:   startTime,
		Initialized: initialized,
		Queue:       e.GetQueueStatus(),
		Breakers:    e.GetCircuitBreakerStatus(),
		Components:  e.reg.Count(),
		Events:      e.store.Count(),
	}
}
