package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"cicd-orchestrator/internal/models"
	"cicd-orchestrator/internal/registry"
	"cicd-orchestrator/services"
)

type ComponentController struct {
	engine *services.Engine
}

/**
 * Create new component controller instance
 * @param {*services.Engine} engine - Orchestration engine instance
 * @returns {*ComponentController} New component controller instance
 */
func NewComponentController(engine *services.Engine) *ComponentController {
	return &ComponentController{engine: engine}
}

/**
 * Register component routes to Gin engine
 * @param {*gin.Engine} r - Gin router instance
 * @description
 * - CRUD under /cicd/api/v1/components
 * - Lifecycle sub-resources: deploy/scale/rollback/health/status/communication
 * - Graph queries: dependencies/affected, plus install-order and
 *   validate/update-order over arbitrary id sets
 */
func (cc *ComponentController) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/cicd/api/v1")
	v1.POST("/components", cc.Register)
	v1.GET("/components", cc.List)
	v1.GET("/components/:id", cc.Get)
	v1.PATCH("/components/:id", cc.Update)
	v1.DELETE("/components/:id", cc.Remove)
	v1.POST("/components/:id/deploy", cc.Deploy)
	v1.POST("/components/:id/scale", cc.Scale)
	v1.POST("/components/:id/rollback", cc.Rollback)
	v1.GET("/components/:id/health", cc.Health)
	v1.GET("/components/:id/status", cc.Status)
	v1.GET("/components/:id/communication", cc.Communication)
	v1.GET("/components/:id/dependencies", cc.Dependencies)
	v1.GET("/components/:id/affected", cc.Affected)
	v1.POST("/components/install-order", cc.InstallOrder)
	v1.POST("/components/validate", cc.Validate)
	v1.POST("/components/update-order", cc.UpdateOrder)
}

// writeComponentError maps the error taxonomy onto HTTP status codes.
func writeComponentError(c *gin.Context, code string, err error) {
	status := 400
	if errors.Is(err, registry.ErrComponentNotFound) {
		status = 404
	}
	c.JSON(status, gin.H{
		"code":    code,
		"message": err.Error(),
	})
}

// @Summary Register a component
// @Description Validates and registers a component definition, then checks that every declared dependency is registered
// @Tags Components
// @Accept json
// @Produce json
// @Success 201 {object} models.ComponentDefinition
// @Failure 400 {object} map[string]interface{}
// @Router /cicd/api/v1/components [post]
func (cc *ComponentController) Register(c *gin.Context) {
	var def models.ComponentDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		c.JSON(400, gin.H{
			"code":    "component.invalid_body",
			"message": "Failed to parse component definition: " + err.Error(),
		})
		return
	}
	if err := cc.engine.ComponentManager().RegisterComponent(def); err != nil {
		var depErr *services.DependencyValidationError
		if errors.As(err, &depErr) {
			// The definition itself is stored; only the closure is incomplete.
			c.JSON(400, gin.H{
				"code":    "component.missing_dependencies",
				"message": err.Error(),
				"missing": depErr.Missing,
			})
			return
		}
		writeComponentError(c, "component.register_failed", err)
		return
	}
	c.JSON(201, def)
}

// @Summary List registered components
// @Tags Components
// @Produce json
// @Param type query string false "Filter by component type"
// @Success 200 {array} models.ComponentDefinition
// @Router /cicd/api/v1/components [get]
func (cc *ComponentController) List(c *gin.Context) {
	if t := c.Query("type"); t != "" {
		c.JSON(200, cc.engine.Registry().FindByType(models.ComponentType(t)))
		return
	}
	c.JSON(200, cc.engine.Registry().List())
}

// @Summary Get one component definition
// @Tags Components
// @Produce json
// @Success 200 {object} models.ComponentDefinition
// @Failure 404 {object} map[string]interface{}
// @Router /cicd/api/v1/components/{id} [get]
func (cc *ComponentController) Get(c *gin.Context) {
	id := c.Param("id")
	def, ok := cc.engine.Registry().Get(id)
	if !ok {
		c.JSON(404, gin.H{
			"code":    "component.not_found",
			"message": "Component '" + id + "' is not registered",
		})
		return
	}
	c.JSON(200, def)
}

// @Summary Update a component definition
// @Description Applies a partial update; the previous definition becomes the rollback snapshot
// @Tags Components
// @Accept json
// @Produce json
// @Success 200 {object} models.ComponentDefinition
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /cicd/api/v1/components/{id} [patch]
func (cc *ComponentController) Update(c *gin.Context) {
	id := c.Param("id")
	var patch models.ComponentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(400, gin.H{
			"code":    "component.invalid_body",
			"message": "Failed to parse component patch: " + err.Error(),
		})
		return
	}
	if err := cc.engine.ComponentManager().UpdateComponent(id, patch); err != nil {
		writeComponentError(c, "component.update_failed", err)
		return
	}
	def, _ := cc.engine.Registry().Get(id)
	c.JSON(200, def)
}

// @Summary Remove a component
// @Description Stops health and auto-scaling polling before unregistering
// @Tags Components
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /cicd/api/v1/components/{id} [delete]
func (cc *ComponentController) Remove(c *gin.Context) {
	id := c.Param("id")
	if err := cc.engine.ComponentManager().RemoveComponent(id); err != nil {
		writeComponentError(c, "component.remove_failed", err)
		return
	}
	c.JSON(200, gin.H{
		"status":  "success",
		"message": "Component '" + id + "' removed",
	})
}

// @Summary Deploy a component
// @Description Modeled rollout to scaling.minReplicas replicas with health polling
// @Tags Components
// @Accept json
// @Produce json
// @Success 200 {object} models.DeploymentResult
// @Router /cicd/api/v1/components/{id}/deploy [post]
func (cc *ComponentController) Deploy(c *gin.Context) {
	var cfg models.DeploymentConfig
	if err := c.ShouldBindJSON(&cfg); err != nil && err.Error() != "EOF" {
		c.JSON(400, gin.H{
			"code":    "component.invalid_body",
			"message": "Failed to parse deployment config: " + err.Error(),
		})
		return
	}
	// Deploy reports failure in the result body, not as an HTTP error.
	c.JSON(200, cc.engine.ComponentManager().DeployComponent(c.Param("id"), cfg))
}

// @Summary Scale a component
// @Description Explicit replica counts are clamped into [minReplicas, maxReplicas]; a policy replaces the scaling block
// @Tags Components
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /cicd/api/v1/components/{id}/scale [post]
func (cc *ComponentController) Scale(c *gin.Context) {
	id := c.Param("id")
	var cfg models.ScalingConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(400, gin.H{
			"code":    "component.invalid_body",
			"message": "Failed to parse scaling config: " + err.Error(),
		})
		return
	}
	if err := cc.engine.ComponentManager().ScaleComponent(id, cfg); err != nil {
		writeComponentError(c, "component.scale_failed", err)
		return
	}
	c.JSON(200, gin.H{
		"status":  "success",
		"message": "Component '" + id + "' scaled",
	})
}

// @Summary Roll back the last update of a component
// @Tags Components
// @Produce json
// @Success 200 {object} models.ComponentDefinition
// @Failure 400 {object} map[string]interface{}
// @Router /cicd/api/v1/components/{id}/rollback [post]
func (cc *ComponentController) Rollback(c *gin.Context) {
	id := c.Param("id")
	if err := cc.engine.ComponentManager().RollbackComponent(id); err != nil {
		writeComponentError(c, "component.rollback_failed", err)
		return
	}
	def, _ := cc.engine.Registry().Get(id)
	c.JSON(200, def)
}

// @Summary Component health
// @Description Unknown ids yield unhealthy with one failing check, never an error
// @Tags Components
// @Produce json
// @Success 200 {object} models.ComponentHealth
// @Router /cicd/api/v1/components/{id}/health [get]
func (cc *ComponentController) Health(c *gin.Context) {
	c.JSON(200, cc.engine.ComponentManager().HealthCheck(c.Param("id")))
}

// @Summary Composite component status
// @Tags Components
// @Produce json
// @Success 200 {object} models.ComponentStatus
// @Router /cicd/api/v1/components/{id}/status [get]
func (cc *ComponentController) Status(c *gin.Context) {
	c.JSON(200, cc.engine.ComponentManager().GetComponentStatus(c.Param("id")))
}

// @Summary Component communication edges
// @Tags Components
// @Produce json
// @Success 200 {object} models.ComponentCommunication
// @Router /cicd/api/v1/components/{id}/communication [get]
func (cc *ComponentController) Communication(c *gin.Context) {
	c.JSON(200, cc.engine.ComponentManager().GetComponentCommunication(c.Param("id")))
}

// @Summary Dependency closure and tree of a component
// @Tags Components
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /cicd/api/v1/components/{id}/dependencies [get]
func (cc *ComponentController) Dependencies(c *gin.Context) {
	id := c.Param("id")
	resolved, err := cc.engine.Resolver().Resolve(id)
	if err != nil {
		writeComponentError(c, "component.resolve_failed", err)
		return
	}
	tree, err := cc.engine.Resolver().DependencyTree(id)
	if err != nil {
		writeComponentError(c, "component.tree_failed", err)
		return
	}
	c.JSON(200, gin.H{
		"componentId":  id,
		"dependencies": resolved,
		"tree":         tree,
	})
}

// @Summary Components transitively depending on this one
// @Tags Components
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /cicd/api/v1/components/{id}/affected [get]
func (cc *ComponentController) Affected(c *gin.Context) {
	id := c.Param("id")
	affected, err := cc.engine.Resolver().FindAffectedComponents(id)
	if err != nil {
		writeComponentError(c, "component.affected_failed", err)
		return
	}
	c.JSON(200, gin.H{
		"componentId": id,
		"affected":    affected,
	})
}

type idSetRequest struct {
	Components []string `json:"components" binding:"required"`
}

// @Summary Topological install order over a component set
// @Tags Components
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /cicd/api/v1/components/install-order [post]
func (cc *ComponentController) InstallOrder(c *gin.Context) {
	var req idSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{
			"code":    "component.invalid_body",
			"message": "Expected a 'components' id list: " + err.Error(),
		})
		return
	}
	order, err := cc.engine.Resolver().InstallOrder(req.Components)
	if err != nil {
		writeComponentError(c, "component.install_order_failed", err)
		return
	}
	c.JSON(200, gin.H{"order": order})
}

// @Summary Validate a component id set
// @Description Reports missing dependencies, circular dependencies and version conflicts
// @Tags Components
// @Accept json
// @Produce json
// @Success 200 {object} models.ValidationReport
// @Failure 400 {object} map[string]interface{}
// @Router /cicd/api/v1/components/validate [post]
func (cc *ComponentController) Validate(c *gin.Context) {
	var req idSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{
			"code":    "component.invalid_body",
			"message": "Expected a 'components' id list: " + err.Error(),
		})
		return
	}
	c.JSON(200, cc.engine.Resolver().Validate(req.Components))
}

// @Summary Validate a proposed update order
// @Tags Components
// @Accept json
// @Produce json
// @Success 200 {object} models.ValidationReport
// @Failure 400 {object} map[string]interface{}
// @Router /cicd/api/v1/components/update-order [post]
func (cc *ComponentController) UpdateOrder(c *gin.Context) {
	var req idSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{
			"code":    "component.invalid_body",
			"message": "Expected a 'components' id list: " + err.Error(),
		})
		return
	}
	c.JSON(200, cc.engine.Resolver().ValidateUpdateOrder(req.Components))
}
