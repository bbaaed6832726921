package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"cicd-orchestrator/internal/models"
)

/**
 * Component specification file preloaded into the registry at server start
 * @property {[]models.ComponentDefinition} components - Definitions to register
 */
type SystemSpecification struct {
	Components []models.ComponentDefinition `yaml:"components" json:"components"`
}

/**
 * Load a component specification file
 * @param {string} path - Specification file path (YAML)
 * @returns {*SystemSpecification} Parsed specification
 * @returns {error} Read or unmarshal failure
 */
func LoadSpec(path string) (*SystemSpecification, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load '%s' failed: %v", path, err)
	}
	var spec SystemSpecification
	if err := yaml.Unmarshal(bytes, &spec); err != nil {
		return nil, fmt.Errorf("unmarshal '%s' failed: %v", path, err)
	}
	return &spec, nil
}
