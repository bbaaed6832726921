package controllers

import (
	"github.com/gin-gonic/gin"

	"cicd-orchestrator/internal/models"
	"cicd-orchestrator/services"
)

type WorkflowController struct {
	engine *services.Engine
}

/**
 * Create new workflow controller instance
 * @param {*services.Engine} engine - Orchestration engine instance
 * @returns {*WorkflowController} New workflow controller instance
 */
func NewWorkflowController(engine *services.Engine) *WorkflowController {
	return &WorkflowController{engine: engine}
}

/**
 * Register workflow routes to Gin engine
 * @param {*gin.Engine} r - Gin router instance
 */
func (wc *WorkflowController) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/cicd/api/v1")
	v1.POST("/workflows", wc.Process)
	v1.POST("/operations", wc.Operate)
}

// @Summary Process a workflow request
// @Description Enqueues the request by priority and blocks until the result is available; workflow failures come back as a 200 with success=false
// @Tags Workflows
// @Accept json
// @Produce json
// @Success 200 {object} models.WorkflowResult
// @Failure 400 {object} map[string]interface{}
// @Router /cicd/api/v1/workflows [post]
func (wc *WorkflowController) Process(c *gin.Context) {
	var req models.WorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{
			"code":    "workflow.invalid_body",
			"message": "Failed to parse workflow request: " + err.Error(),
		})
		return
	}
	if req.Type == "" {
		c.JSON(400, gin.H{
			"code":    "workflow.missing_type",
			"message": "Workflow request needs a 'type'",
		})
		return
	}
	c.JSON(200, wc.engine.ProcessWorkflow(req))
}

// @Summary Run a component operation
// @Description Routes start/stop/restart/scale/deploy/update/configure to the component manager; failures come back as a 200 with success=false
// @Tags Workflows
// @Accept json
// @Produce json
// @Success 200 {object} models.OperationResult
// @Failure 400 {object} map[string]interface{}
// @Router /cicd/api/v1/operations [post]
func (wc *WorkflowController) Operate(c *gin.Context) {
	var op models.ComponentOperation
	if err := c.ShouldBindJSON(&op); err != nil {
		c.JSON(400, gin.H{
			"code":    "operation.invalid_body",
			"message": "Failed to parse component operation: " + err.Error(),
		})
		return
	}
	if op.Action == "" || op.ComponentID == "" {
		c.JSON(400, gin.H{
			"code":    "operation.missing_fields",
			"message": "Component operation needs 'action' and 'componentId'",
		})
		return
	}
	c.JSON(200, wc.engine.ManageComponents(op))
}
