package main

import (
	"os"

	_ "cicd-orchestrator/cmd"
	"cicd-orchestrator/cmd/root"
	"cicd-orchestrator/internal/config"
	"cicd-orchestrator/internal/logger"
)

func main() {
	// Server mode tees logs to stdout; CLI mode keeps command output clean.
	isServerMode := len(os.Args) > 1 && os.Args[1] == "server"

	logger.InitLoggerWithMode(&config.Config.Log, isServerMode)

	if err := root.RootCmd.Execute(); err != nil {
		logger.Fatal(err)
	}
	os.Exit(0)
}
