package server

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"cicd-orchestrator/cmd/root"
	"cicd-orchestrator/controllers"
	"cicd-orchestrator/internal/config"
	"cicd-orchestrator/internal/logger"
	"cicd-orchestrator/internal/middleware"
	"cicd-orchestrator/services"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the orchestration HTTP service",
	Run: func(cmd *cobra.Command, args []string) {
		if err := startServer(context.Background()); err != nil {
			log.Fatal(err)
		}
	},
}

func startServer(ctx context.Context) error {
	if config.Config.Server.Mode != "" {
		gin.SetMode(config.Config.Server.Mode)
	}
	router := gin.Default()
	router.Use(middleware.MetricsMiddleware())

	engine := services.GetEngine()
	engine.Initialize()
	defer engine.Shutdown()

	if err := preloadComponents(engine); err != nil {
		return err
	}

	controllers.NewAPIController(engine).RegisterRoutes(router)
	controllers.NewComponentController(engine).RegisterRoutes(router)
	controllers.NewWorkflowController(engine).RegisterRoutes(router)

	logger.Infof("orchestrator listening on %s", config.Config.Server.Address)
	return router.Run(config.Config.Server.Address)
}

// preloadComponents registers the definitions of the configured components
// file, when one is configured.
func preloadComponents(engine *services.Engine) error {
	path := config.Config.ComponentsFile
	if path == "" {
		return nil
	}
	spec, err := config.LoadSpec(path)
	if err != nil {
		return fmt.Errorf("preload components failed: %v", err)
	}
	for _, def := range spec.Components {
		if err := engine.ComponentManager().RegisterComponent(def); err != nil {
			logger.Warnf("preload of component '%s' failed: %v", def.ID, err)
		}
	}
	logger.Infof("preloaded %d component definitions from %s", len(spec.Components), path)
	return nil
}

func init() {
	root.RootCmd.AddCommand(serverCmd)
}
