package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"cicd-orchestrator/cmd/root"
	"cicd-orchestrator/internal/config"
	"cicd-orchestrator/internal/models"
)

var (
	workflowType string
	readmePath   string
	priority     string
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Submit workflow requests",
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process one workflow request against the running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return processWorkflow()
	},
}

/**
 * Submit one workflow request and print the result
 * @returns {error} Transport error; workflow failures are printed, not returned
 */
func processWorkflow() error {
	req := models.WorkflowRequest{
		Type:     workflowType,
		Priority: priority,
		Payload:  map[string]interface{}{},
	}
	if readmePath != "" {
		req.Payload["readmePath"] = readmePath
	}

	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	addr := config.Config.Server.Address
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	resp, err := http.Post(
		fmt.Sprintf("http://%s/cicd/api/v1/workflows", addr),
		"application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request to orchestrator server failed: %v (is the server running?)", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("server answered %d: %s", resp.StatusCode, string(raw))
	}

	var result models.WorkflowResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	if !result.Success {
		fmt.Printf("Workflow failed (trace %s):\n", result.TraceID)
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
		return nil
	}

	pretty, _ := json.MarshalIndent(result.Data, "", "  ")
	fmt.Printf("Workflow completed in %s (trace %s)\n%s\n",
		result.Metrics.Duration, result.TraceID, string(pretty))
	return nil
}

func init() {
	root.RootCmd.AddCommand(workflowCmd)
	workflowCmd.AddCommand(processCmd)
	processCmd.Flags().StringVarP(&workflowType, "type", "t", "readme-to-cicd", "Workflow type")
	processCmd.Flags().StringVarP(&readmePath, "readme", "r", "", "README path for readme-to-cicd workflows")
	processCmd.Flags().StringVarP(&priority, "priority", "p", "normal", "Request priority (critical/high/normal/low)")
	processCmd.Example = `  cicd-orchestrator workflow process --readme ./README.md
  cicd-orchestrator workflow process -t system-maintenance`
}
