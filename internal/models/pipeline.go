package models

/**
 * Project information extracted from a README file
 * @property {[]string} languages - Languages seen in fenced code blocks / badges
 */
type ProjectInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Languages   []string `json:"languages,omitempty"`
	Commands    []string `json:"commands,omitempty"`
}

/**
 * Wrapped result of the README parser collaborator
 * @description {success, data|errors} shape at the boundary
 */
type ParseResult struct {
	Success bool         `json:"success"`
	Data    *ProjectInfo `json:"data,omitempty"`
	Errors  []string     `json:"errors,omitempty"`
}

// DetectedFramework names one framework/build-tool hit with a confidence score.
type DetectedFramework struct {
	Name       string  `json:"name"`
	Language   string  `json:"language"`
	BuildTool  string  `json:"buildTool,omitempty"`
	Confidence float64 `json:"confidence"`
}

// DetectionResult is the framework detector collaborator's answer.
type DetectionResult struct {
	ProjectName string              `json:"projectName"`
	Frameworks  []DetectedFramework `json:"frameworks"`
}

/**
 * Generated workflow file returned by the YAML generator collaborator
 * @description A direct value, not a wrapped result; the engine adapts it
 */
type WorkflowFile struct {
	Filename string                 `json:"filename"`
	Content  string                 `json:"content"`
	Type     string                 `json:"type"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
