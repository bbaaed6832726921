package services

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"cicd-orchestrator/internal/models"
)

/**
 * README parser collaborator
 * @description Returns a wrapped result; a nil error with success=false means the
 *   file was reachable but yielded nothing usable
 */
type ReadmeParser interface {
	ParseFile(path string) (*models.ParseResult, error)
}

/**
 * Framework detector collaborator
 * @description May return nil without error; callers treat nil as detection failure
 */
type FrameworkDetector interface {
	DetectFrameworks(info *models.ProjectInfo) (*models.DetectionResult, error)
}

/**
 * Workflow YAML generator collaborator
 */
type YAMLGenerator interface {
	GenerateWorkflow(detection *models.DetectionResult, options map[string]interface{}) (models.WorkflowFile, error)
}

var (
	headingPattern   = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	codeFencePattern = regexp.MustCompile("(?m)^```([a-zA-Z0-9+#-]+)")
	badgePattern     = regexp.MustCompile(`img\.shields\.io/badge/([a-zA-Z0-9_+#-]+)-`)
)

/**
 * Simulated README parser
 * @description Extracts the H1 title, fenced code-block languages and badge hints.
 *   Stands in for the real parsing subsystem.
 */
type SimulatedReadmeParser struct{}

func NewSimulatedReadmeParser() *SimulatedReadmeParser {
	return &SimulatedReadmeParser{}
}

func (p *SimulatedReadmeParser) ParseFile(path string) (*models.ParseResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &models.ParseResult{
			Success: false,
			Errors:  []string{fmt.Sprintf("read '%s' failed: %v", path, err)},
		}, nil
	}
	content := string(raw)

	info := &models.ProjectInfo{
		Name: strings.TrimSuffix(filepath.Base(filepath.Dir(path)), "/"),
	}
	if m := headingPattern.FindStringSubmatch(content); m != nil {
		info.Name = strings.TrimSpace(m[1])
	}

	langs := make(map[string]bool)
	for _, m := range codeFencePattern.FindAllStringSubmatch(content, -1) {
		langs[strings.ToLower(m[1])] = true
	}
	for _, m := range badgePattern.FindAllStringSubmatch(content, -1) {
		langs[strings.ToLower(m[1])] = true
	}
	for lang := range langs {
		info.Languages = append(info.Languages, lang)
	}
	sort.Strings(info.Languages)

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "$ ") {
			info.Commands = append(info.Commands, strings.TrimPrefix(trimmed, "$ "))
		}
	}

	if info.Name == "" && len(info.Languages) == 0 {
		return &models.ParseResult{
			Success: false,
			Errors:  []string{fmt.Sprintf("no project information found in '%s'", path)},
		}, nil
	}
	return &models.ParseResult{Success: true, Data: info}, nil
}

// frameworkHints maps a language to its most common framework and build tool.
var frameworkHints = map[string]models.DetectedFramework{
	"go":         {Name: "go-modules", Language: "go", BuildTool: "go", Confidence: 0.9},
	"golang":     {Name: "go-modules", Language: "go", BuildTool: "go", Confidence: 0.9},
	"javascript": {Name: "nodejs", Language: "javascript", BuildTool: "npm", Confidence: 0.8},
	"typescript": {Name: "nodejs", Language: "typescript", BuildTool: "npm", Confidence: 0.8},
	"python":     {Name: "python", Language: "python", BuildTool: "pip", Confidence: 0.8},
	"java":       {Name: "maven", Language: "java", BuildTool: "mvn", Confidence: 0.7},
	"rust":       {Name: "cargo", Language: "rust", BuildTool: "cargo", Confidence: 0.9},
	"ruby":       {Name: "bundler", Language: "ruby", BuildTool: "bundle", Confidence: 0.7},
}

/**
 * Simulated framework detector
 * @description Lookup-table mapping from languages to frameworks. Returns nil when
 *   nothing matches, which callers treat as a detection failure.
 */
type SimulatedFrameworkDetector struct{}

func NewSimulatedFrameworkDetector() *SimulatedFrameworkDetector {
	return &SimulatedFrameworkDetector{}
}

func (d *SimulatedFrameworkDetector) DetectFrameworks(info *models.ProjectInfo) (*models.DetectionResult, error) {
	if info == nil {
		return nil, fmt.Errorf("nil project info")
	}
	result := &models.DetectionResult{ProjectName: info.Name}
	for _, lang := range info.Languages {
		if hit, ok := frameworkHints[strings.ToLower(lang)]; ok {
			result.Frameworks = append(result.Frameworks, hit)
		}
	}
	if len(result.Frameworks) == 0 {
		return nil, nil
	}
	return result, nil
}

/**
 * Simulated workflow generator
 * @description Renders a GitHub-Actions-shaped document with yaml.v3
 */
type SimulatedYAMLGenerator struct{}

func NewSimulatedYAMLGenerator() *SimulatedYAMLGenerator {
	return &SimulatedYAMLGenerator{}
}

func (g *SimulatedYAMLGenerator) GenerateWorkflow(detection *models.DetectionResult, options map[string]interface{}) (models.WorkflowFile, error) {
	if detection == nil || len(detection.Frameworks) == 0 {
		return models.WorkflowFile{}, fmt.Errorf("no frameworks to generate a workflow for")
	}

	workflowType := "ci"
	if options != nil {
		if t, ok := options["workflowType"].(string); ok && t != "" {
			workflowType = t
		}
	}

	var steps []map[string]interface{}
	steps = append(steps, map[string]interface{}{"uses": "actions/checkout@v4"})
	for _, fw := range detection.Frameworks {
		steps = append(steps, map[string]interface{}{
			"name": fmt.Sprintf("Build (%s)", fw.Name),
			"run":  buildCommand(fw),
		})
	}

	doc := map[string]interface{}{
		"name": fmt.Sprintf("%s %s", detection.ProjectName, strings.ToUpper(workflowType)),
		"on":   []string{"push", "pull_request"},
		"jobs": map[string]interface{}{
			"build": map[string]interface{}{
				"runs-on": "ubuntu-latest",
				"steps":   steps,
			},
		},
	}

	content, err := yaml.Marshal(doc)
	if err != nil {
		return models.WorkflowFile{}, fmt.Errorf("render workflow failed: %v", err)
	}

	return models.WorkflowFile{
		Filename: fmt.Sprintf("%s.yml", workflowType),
		Content:  string(content),
		Type:     workflowType,
		Metadata: map[string]interface{}{
			"project":    detection.ProjectName,
			"frameworks": len(detection.Frameworks),
		},
	}, nil
}

func buildCommand(fw models.DetectedFramework) string {
	switch fw.BuildTool {
	case "go":
		return "go build ./... && go test ./..."
	case "npm":
		return "npm ci && npm test"
	case "pip":
		return "pip install -r requirements.txt && pytest"
	case "mvn":
		return "mvn -B verify"
	case "cargo":
		return "cargo build && cargo test"
	case "bundle":
		return "bundle install && bundle exec rake"
	default:
		return "make build"
	}
}
