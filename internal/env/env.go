package env

import (
	"os"
	"path/filepath"
)

var Daemon bool = false
var ListenPort int = 0

// Version is stamped by the build (-ldflags "-X cicd-orchestrator/internal/env.Version=...").
var Version string = "1.0.0"

// (default: %USERPROFILE%/.orchestrator on Windows, $HOME/.orchestrator on Linux)
var OrchestratorDir string = GetOrchestratorDir()

/**
 * Get orchestrator directory path
 * @returns {string} Returns orchestrator directory path
 */
func GetOrchestratorDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".orchestrator")
}
