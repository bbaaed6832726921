package cmd

import (
	_ "cicd-orchestrator/cmd/component"
	_ "cicd-orchestrator/cmd/root"
	_ "cicd-orchestrator/cmd/server"
	_ "cicd-orchestrator/cmd/workflow"
)
