package component

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <component-id>",
	Short: "Remove a registered component",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return removeComponent(args[0])
	},
}

/**
 * Remove one component from the running server
 * @param {string} id - Component id
 * @returns {error} Returns error if the server rejects the removal
 */
func removeComponent(id string) error {
	if err := callAPI("DELETE", "/components/"+id, nil, nil); err != nil {
		return err
	}
	fmt.Printf("Component '%s' removed\n", id)
	return nil
}

func init() {
	componentCmd.AddCommand(removeCmd)
	removeCmd.Example = `  cicd-orchestrator component remove web-service`
}
