package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cicd-orchestrator/internal/env"
	"cicd-orchestrator/internal/middleware"
	"cicd-orchestrator/internal/models"
	"cicd-orchestrator/services"
)

type APIController struct {
	engine    *services.Engine
	startTime time.Time
}

/**
 * Create new API controller instance
 * @param {*services.Engine} engine - Orchestration engine instance
 * @returns {*APIController} New API controller instance
 * @example
 * engine := services.GetEngine()
 * controller := controllers.NewAPIController(engine)
 */
func NewAPIController(engine *services.Engine) *APIController {
	return &APIController{
		engine:    engine,
		startTime: time.Now(),
	}
}

/**
 * Register all API routes to Gin engine
 * @param {*gin.Engine} r - Gin router instance
 * @description
 * - Registers /healthz and /metrics at the root
 * - Registers events, queue, breakers and state under /cicd/api/v1
 */
func (a *APIController) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", a.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/cicd/api/v1")
	v1.GET("/events", a.ListEvents)
	v1.GET("/queue", a.GetQueueStatus)
	v1.GET("/breakers", a.GetBreakerStatus)
	v1.GET("/state", a.GetState)
}

// @Summary Readiness probe
// @Description Returns daemon version, start time, status and key metric totals
// @Tags System
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /healthz [get]
func (a *APIController) Healthz(c *gin.Context) {
	queueStatus := a.engine.GetQueueStatus()
	c.JSON(200, models.HealthResponse{
		Version:   env.Version,
		StartTime: a.startTime.Format(time.RFC3339),
		Status:    "UP",
		Uptime:    time.Since(a.startTime).Round(time.Second).String(),
		Metrics: models.Metrics{
			TotalRequests:        middleware.GetTotalRequests(),
			ErrorRequests:        middleware.GetErrorRequests(),
			RegisteredComponents: a.engine.Registry().Count(),
			DeployedComponents:   a.engine.ComponentManager().DeployedCount(),
			WorkflowsCompleted:   queueStatus.Completed,
			WorkflowsFailed:      queueStatus.Failed,
		},
	})
}

// @Summary List retained system events
// @Description Events in insertion order, optionally filtered by type or since timestamp (RFC3339)
// @Tags Events
// @Produce json
// @Param type query string false "Exact event type filter"
// @Param since query string false "RFC3339 lower bound on the event timestamp"
// @Success 200 {array} models.SystemEvent
// @Failure 400 {object} map[string]interface{}
// @Router /cicd/api/v1/events [get]
func (a *APIController) ListEvents(c *gin.Context) {
	store := a.engine.EventStore()

	if sinceParam := c.Query("since"); sinceParam != "" {
		since, err := time.Parse(time.RFC3339, sinceParam)
		if err != nil {
			c.JSON(400, gin.H{
				"code":    "events.invalid_since",
				"message": "Invalid 'since' parameter, expected RFC3339: " + err.Error(),
			})
			return
		}
		evs := store.EventsSince(since)
		if typeParam := c.Query("type"); typeParam != "" {
			evs = filterByType(evs, typeParam)
		}
		c.JSON(200, evs)
		return
	}

	if typeParam := c.Query("type"); typeParam != "" {
		c.JSON(200, store.EventsByType(typeParam))
		return
	}
	c.JSON(200, store.Events())
}

func filterByType(evs []models.SystemEvent, eventType string) []models.SystemEvent {
	out := make([]models.SystemEvent, 0, len(evs))
	for _, ev := range evs {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

// @Summary Workflow queue snapshot
// @Tags System
// @Produce json
// @Success 200 {object} models.QueueStatus
// @Router /cicd/api/v1/queue [get]
func (a *APIController) GetQueueStatus(c *gin.Context) {
	c.JSON(200, a.engine.GetQueueStatus())
}

// @Summary Circuit breaker snapshots
// @Tags System
// @Produce json
// @Success 200 {object} map[string]models.BreakerStatus
// @Router /cicd/api/v1/breakers [get]
func (a *APIController) GetBreakerStatus(c *gin.Context) {
	c.JSON(200, a.engine.GetCircuitBreakerStatus())
}

// @Summary Engine state snapshot
// @Tags System
// @Produce json
// @Success 200 {object} models.EngineState
// @Router /cicd/api/v1/state [get]
func (a *APIController) GetState(c *gin.Context) {
	c.JSON(200, a.engine.GetState())
}
