package services

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cicd-orchestrator/internal/models"
)

type stubParser struct {
	result *models.ParseResult
	err    error
	delay  time.Duration
	calls  int32
}

func (s *stubParser) ParseFile(path string) (*models.ParseResult, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.result, s.err
}

type stubDetector struct {
	result *models.DetectionResult
	err    error
}

func (s *stubDetector) DetectFrameworks(info *models.ProjectInfo) (*models.DetectionResult, error) {
	return s.result, s.err
}

type stubGenerator struct {
	file models.WorkflowFile
	err  error
}

func (s *stubGenerator) GenerateWorkflow(d *models.DetectionResult, opts map[string]interface{}) (models.WorkflowFile, error) {
	return s.file, s.err
}

func happyStubs() (*stubParser, *stubDetector, *stubGenerator) {
	parser := &stubParser{result: &models.ParseResult{
		Success: true,
		Data:    &models.ProjectInfo{Name: "demo", Languages: []string{"go"}},
	}}
	detector := &stubDetector{result: &models.DetectionResult{
		ProjectName: "demo",
		Frameworks:  []models.DetectedFramework{{Name: "go-modules", Language: "go", Confidence: 0.9}},
	}}
	generator := &stubGenerator{file: models.WorkflowFile{Filename: "ci.yml", Content: "name: demo CI", Type: "ci"}}
	return parser, detector, generator
}

func testEngine(parser ReadmeParser, detector FrameworkDetector, gen YAMLGenerator) *Engine {
	return NewEngine(EngineOptions{
		Parser:              parser,
		Detector:            detector,
		Generator:           gen,
		BreakerThreshold:    2,
		BreakerResetTimeout: time.Minute,
		CollaboratorTimeout: 200 * time.Millisecond,
		PollInterval:        time.Hour,
		MaintenanceInterval: time.Hour,
		EventRetention:      time.Hour,
	})
}

func readmeRequest() models.WorkflowRequest {
	return models.WorkflowRequest{
		Type:     "readme-to-cicd",
		Payload:  map[string]interface{}{"readmePath": "README.md"},
		Priority: "high",
	}
}

func TestUnknownWorkflowTypeFailsWithoutPanic(t *testing.T) {
	e := testEngine(happyStubs())

	result := e.ProcessWorkflow(models.WorkflowRequest{Type: "make-coffee"})
	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "make-coffee")
	assert.NotEmpty(t, result.TraceID)
}

func TestReadmePipelineHappyPath(t *testing.T) {
	e := testEngine(happyStubs())

	result := e.ProcessWorkflow(readmeRequest())
	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, "demo", result.Data["project"])

	file, ok := result.Data["workflowFile"].(models.WorkflowFile)
	require.True(t, ok)
	assert.Equal(t, "ci.yml", file.Filename)
	assert.Greater(t, result.Metrics.Duration, time.Duration(0))
}

func TestReadmePipelineEmitsLifecycleEvents(t *testing.T) {
	e := testEngine(happyStubs())
	e.ProcessWorkflow(readmeRequest())

	types := map[string]bool{}
	for _, ev := range e.GetEventHistory() {
		types[ev.Type] = true
	}
	assert.True(t, types[models.EventWorkflowStarted])
	assert.True(t, types[models.EventWorkflowCompleted])
}

func TestReadmePipelineParserFailure(t *testing.T) {
	parser := &stubParser{err: errors.New("disk on fire")}
	_, detector, gen := happyStubs()
	e := testEngine(parser, detector, gen)

	result := e.ProcessWorkflow(readmeRequest())
	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "readme parsing failed")
}

func TestReadmePipelineUnsuccessfulParseResult(t *testing.T) {
	parser := &stubParser{result: &models.ParseResult{Success: false, Errors: []string{"empty file"}}}
	_, detector, gen := happyStubs()
	e := testEngine(parser, detector, gen)

	result := e.ProcessWorkflow(readmeRequest())
	assert.False(t, result.Success)
	assert.Equal(t, []string{"empty file"}, result.Errors)
}

func TestReadmePipelineNilDetectionFails(t *testing.T) {
	parser, _, gen := happyStubs()
	e := testEngine(parser, &stubDetector{result: nil}, gen)

	result := e.ProcessWorkflow(readmeRequest())
	assert.False(t, result.Success)
	assert.Contains(t, result.Errors[0], "framework detection")
}

func TestBreakerOpensAfterRepeatedParserFailures(t *testing.T) {
	parser := &stubParser{err: errors.New("boom")}
	_, detector, gen := happyStubs()
	e := testEngine(parser, detector, gen)

	// Threshold is 2: two real failures, then fail-fast without invocation.
	e.ProcessWorkflow(readmeRequest())
	e.ProcessWorkflow(readmeRequest())
	result := e.ProcessWorkflow(readmeRequest())

	assert.False(t, result.Success)
	assert.Contains(t, result.Errors[0], "circuit breaker is open")
	assert.Equal(t, int32(2), atomic.LoadInt32(&parser.calls))
	assert.Equal(t, "open", e.GetCircuitBreakerStatus()[BreakerReadmeParser].State)
}

func TestCollaboratorTimeoutEmitsEvent(t *testing.T) {
	parser := &stubParser{
		result: &models.ParseResult{Success: true, Data: &models.ProjectInfo{Name: "slow"}},
		delay:  400 * time.Millisecond,
	}
	_, detector, gen := happyStubs()
	e := testEngine(parser, detector, gen)

	result := e.ProcessWorkflow(readmeRequest())
	assert.False(t, result.Success)
	assert.Contains(t, result.Errors[0], "timed out")

	timeouts := e.EventStore().EventsByType(models.EventWorkflowTimeout)
	require.Len(t, timeouts, 1)
	assert.Equal(t, BreakerReadmeParser, timeouts[0].Data["collaborator"])
}

func TestSimulatedPipelineEndToEnd(t *testing.T) {
	dir := t.TempDir()
	readme := filepath.Join(dir, "README.md")
	content := "# Demo Service\n\n```go\npackage main\n```\n"
	require.NoError(t, os.WriteFile(readme, []byte(content), 0644))

	e := NewEngine(EngineOptions{
		BreakerThreshold:    5,
		BreakerResetTimeout: time.Minute,
		CollaboratorTimeout: 5 * time.Second,
		PollInterval:        time.Hour,
		MaintenanceInterval: time.Hour,
		EventRetention:      time.Hour,
	})

	result := e.ProcessWorkflow(models.WorkflowRequest{
		Type:    "readme-to-cicd",
		Payload: map[string]interface{}{"readmePath": readme},
	})
	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, "Demo Service", result.Data["project"])

	file := result.Data["workflowFile"].(models.WorkflowFile)
	assert.Equal(t, "ci.yml", file.Filename)
	assert.Contains(t, file.Content, "actions/checkout@v4")
	assert.Contains(t, file.Content, "go build")
}

func TestMaintenanceCleanupPrunesOldEvents(t *testing.T) {
	e := NewEngine(EngineOptions{
		EventRetention:      50 * time.Millisecond,
		PollInterval:        time.Hour,
		MaintenanceInterval: time.Hour,
		CollaboratorTimeout: time.Second,
	})

	e.HandleSystemEvent(models.SystemEvent{Type: "stale.event"})
	time.Sleep(80 * time.Millisecond)

	result := e.ProcessWorkflow(models.WorkflowRequest{
		Type:    "system-maintenance",
		Payload: map[string]interface{}{"task": "cleanup"},
	})
	require.True(t, result.Success)
	assert.Equal(t, 1, result.Data["prunedEvents"])
	assert.Empty(t, e.EventStore().EventsByType("stale.event"))
}

func TestMaintenanceBackupSnapshotsState(t *testing.T) {
	e := testEngine(happyStubs())
	require.NoError(t, e.ComponentManager().RegisterComponent(managedDefinition("web")))

	result := e.ProcessWorkflow(models.WorkflowRequest{
		Type:    "system-maintenance",
		Payload: map[string]interface{}{"task": "backup"},
	})
	require.True(t, result.Success)
	assert.Equal(t, 1, result.Data["components"])
}

func TestMaintenanceHealthCheckAggregates(t *testing.T) {
	e := testEngine(happyStubs())
	require.NoError(t, e.ComponentManager().RegisterComponent(managedDefinition("web")))
	e.ComponentManager().DeployComponent("web", models.DeploymentConfig{})
	require.NoError(t, e.ComponentManager().RegisterComponent(managedDefinition("idle")))

	result := e.ProcessWorkflow(models.WorkflowRequest{
		Type:    "system-maintenance",
		Payload: map[string]interface{}{"task": "health-check"},
	})
	require.True(t, result.Success)
	assert.Equal(t, 1, result.Data["healthy"])
	assert.Equal(t, 1, result.Data["degraded"])
}

func TestMaintenanceUnknownTask(t *testing.T) {
	e := testEngine(happyStubs())
	result := e.ProcessWorkflow(models.WorkflowRequest{
		Type:    "system-maintenance",
		Payload: map[string]interface{}{"task": "defragment"},
	})
	assert.False(t, result.Success)
}

func TestManageComponentsUnknownID(t *testing.T) {
	e := testEngine(happyStubs())
	result := e.ManageComponents(models.ComponentOperation{Action: "deploy", ComponentID: "ghost"})
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Message)
}

func TestManageComponentsDeployAndScale(t *testing.T) {
	e := testEngine(happyStubs())
	require.NoError(t, e.ComponentManager().RegisterComponent(managedDefinition("web")))

	deploy := e.ManageComponents(models.ComponentOperation{Action: "deploy", ComponentID: "web"})
	require.True(t, deploy.Success, deploy.Message)

	scale := e.ManageComponents(models.ComponentOperation{
		Action:      "scale",
		ComponentID: "web",
		Payload:     map[string]interface{}{"replicas": 4},
	})
	require.True(t, scale.Success, scale.Message)
	assert.Equal(t, 4, e.ComponentManager().GetComponentStatus("web").Replicas)
}

func TestManageComponentsUnknownAction(t *testing.T) {
	e := testEngine(happyStubs())
	result := e.ManageComponents(models.ComponentOperation{Action: "teleport", ComponentID: "web"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "teleport")
}

func TestListenersReceiveEventsInOrder(t *testing.T) {
	e := testEngine(happyStubs())
	var got []string
	e.On("custom.event", func(ev models.SystemEvent) { got = append(got, "first") })
	e.On("custom.event", func(ev models.SystemEvent) { got = append(got, "second") })

	e.HandleSystemEvent(models.SystemEvent{Type: "custom.event"})
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestOffRemovesListener(t *testing.T) {
	e := testEngine(happyStubs())
	calls := 0
	id := e.On("custom.event", func(ev models.SystemEvent) { calls++ })

	e.HandleSystemEvent(models.SystemEvent{Type: "custom.event"})
	e.Off("custom.event", id)
	e.HandleSystemEvent(models.SystemEvent{Type: "custom.event"})

	assert.Equal(t, 1, calls)

	// Off on an unregistered pair is a no-op.
	e.Off("custom.event", 999)
	e.Off("never.seen", 1)
}

func TestPanickingListenerIsIsolated(t *testing.T) {
	e := testEngine(happyStubs())
	survived := false
	e.On("custom.event", func(ev models.SystemEvent) { panic("listener bug") })
	e.On("custom.event", func(ev models.SystemEvent) { survived = true })

	e.HandleSystemEvent(models.SystemEvent{Type: "custom.event"})
	assert.True(t, survived, "a panicking listener must not block the others")
	assert.Equal(t, 1, len(e.EventStore().EventsByType("custom.event")), "the event is recorded regardless")
}

func TestWorkflowCountersTrackOutcomes(t *testing.T) {
	e := testEngine(happyStubs())
	e.ProcessWorkflow(readmeRequest())
	e.ProcessWorkflow(models.WorkflowRequest{Type: "nope"})

	status := e.GetQueueStatus()
	assert.Equal(t, int64(1), status.Completed)
	assert.Equal(t, int64(1), status.Failed)
	assert.Equal(t, 0, status.Pending)
}

func TestInitializedEngineProcessesThroughQueue(t *testing.T) {
	e := testEngine(happyStubs())
	e.Initialize()
	defer e.Shutdown()

	result := e.ProcessWorkflow(readmeRequest())
	assert.True(t, result.Success, "errors: %v", result.Errors)
}

func TestProcessWorkflowRacingShutdownNeverBlocks(t *testing.T) {
	e := testEngine(happyStubs())
	e.Initialize()

	const submissions = 32
	results := make(chan models.WorkflowResult, submissions)
	var wg sync.WaitGroup
	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- e.ProcessWorkflow(readmeRequest())
		}()
	}
	e.Shutdown()

	finished := make(chan struct{})
	go func() { wg.Wait(); close(finished) }()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("a workflow submission blocked across shutdown")
	}

	close(results)
	for result := range results {
		if !result.Success {
			assert.NotEmpty(t, result.Errors)
		}
	}

	// After shutdown submissions run inline.
	result := e.ProcessWorkflow(readmeRequest())
	assert.True(t, result.Success, "errors: %v", result.Errors)
}

func TestListenerAddedDuringDispatchSeesOnlyNextEvent(t *testing.T) {
	e := testEngine(happyStubs())
	lateCalls := 0
	added := false
	e.On("custom.event", func(ev models.SystemEvent) {
		if !added {
			added = true
			e.On("custom.event", func(models.SystemEvent) { lateCalls++ })
		}
	})

	e.HandleSystemEvent(models.SystemEvent{Type: "custom.event"})
	assert.Equal(t, 0, lateCalls, "a listener added mid-dispatch must not see the current event")

	e.HandleSystemEvent(models.SystemEvent{Type: "custom.event"})
	assert.Equal(t, 1, lateCalls)
}

func TestShutdownClearsStateAndCounters(t *testing.T) {
	e := testEngine(happyStubs())
	e.Initialize()
	e.ProcessWorkflow(readmeRequest())
	e.Shutdown()

	assert.Empty(t, e.GetEventHistory())
	status := e.GetQueueStatus()
	assert.Equal(t, int64(0), status.Completed)
	assert.Equal(t, int64(0), status.Failed)
	assert.False(t, e.GetState().Initialized)
}

func TestGetState(t *testing.T) {
	e := testEngine(happyStubs())
	require.NoError(t, e.ComponentManager().RegisterComponent(managedDefinition("web")))

	state := e.GetState()
	assert.Equal(t, 1, state.Components)
	assert.Len(t, state.Breakers, 3)
	assert.False(t, state.Initialized)
}
