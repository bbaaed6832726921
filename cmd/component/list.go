package component

import (
	"fmt"
	"strings"

	"github.com/iancoleman/orderedmap"
	"github.com/spf13/cobra"

	"cicd-orchestrator/internal/models"
	"cicd-orchestrator/internal/utils"
)

var listType string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered components",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listComponents()
	},
}

type Component_Columns struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Version      string `json:"version"`
	Type         string `json:"type"`
	Dependencies string `json:"dependencies"`
	Replicas     string `json:"replicas"`
}

/**
 * List all components with detailed information
 * @returns {error} Returns error if listing fails, nil on success
 * @description
 * - Fetches registered components from the running server
 * - Uses utils.PrintFormat for table output
 */
func listComponents() error {
	path := "/components"
	if listType != "" {
		path += "?type=" + listType
	}
	var components []models.ComponentDefinition
	if err := callAPI("GET", path, nil, &components); err != nil {
		return err
	}
	if len(components) == 0 {
		fmt.Println("No components found")
		return nil
	}

	var dataList []*orderedmap.OrderedMap
	for _, comp := range components {
		row := Component_Columns{
			ID:           comp.ID,
			Name:         comp.Name,
			Version:      comp.Version,
			Type:         string(comp.Type),
			Dependencies: strings.Join(comp.Dependencies, ","),
			Replicas:     fmt.Sprintf("%d-%d", comp.Scaling.MinReplicas, comp.Scaling.MaxReplicas),
		}
		recordMap, _ := utils.StructToOrderedMap(row)
		dataList = append(dataList, recordMap)
	}

	utils.PrintFormat(dataList)
	return nil
}

func init() {
	componentCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "Filter by component type (service/function/worker/extension)")
	listCmd.Example = `  cicd-orchestrator component list
  cicd-orchestrator component list --type service`
}
