package root

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "cicd-orchestrator",
	Short: "CI/CD workflow generation control plane",
	Long:  `cicd-orchestrator manages component registration, deployment, scaling and README-to-CI/CD workflow generation`,
}
