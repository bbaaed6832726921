package component

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"cicd-orchestrator/internal/models"
)

var registerFile string

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a component from a definition file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return registerComponent()
	},
}

/**
 * Register one component definition with the running server
 * @returns {error} Returns error if the file is unreadable or the server rejects it
 * @description Accepts a YAML definition file and posts it as JSON
 */
func registerComponent() error {
	raw, err := os.ReadFile(registerFile)
	if err != nil {
		return fmt.Errorf("read '%s' failed: %v", registerFile, err)
	}
	var def models.ComponentDefinition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return fmt.Errorf("parse '%s' failed: %v", registerFile, err)
	}

	body, err := json.Marshal(def)
	if err != nil {
		return err
	}
	if err := callAPI("POST", "/components", bytes.NewReader(body), nil); err != nil {
		return err
	}
	fmt.Printf("Component '%s' registered\n", def.ID)
	return nil
}

func init() {
	componentCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVarP(&registerFile, "file", "f", "", "Component definition file (YAML)")
	registerCmd.MarkFlagRequired("file")
	registerCmd.Example = `  cicd-orchestrator component register -f web-service.yaml`
}
