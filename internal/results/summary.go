package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultDir is where run summaries are written
const DefaultDir = "runs"

const timestampLayout = "2006-01-02_15-04-05"

// RunConfig represents the configuration section of the run YAML
type RunConfig struct {
	Backend   string `yaml:"backend"`
	Model     string `yaml:"model"`
	Data      string `yaml:"data"`
	Split     string `yaml:"split,omitempty"`
	Language  string `yaml:"language"`
	NumImages int    `yaml:"numimages"`
	Dest      string `yaml:"dest"`
	Test      bool   `yaml:"test"`
	Seed      int64  `yaml:"seed"`
	Timestamp string `yaml:"timestamp"`
}

// PromptResult is the outcome of one prompt
type PromptResult struct {
	Table      string   `yaml:"table"`
	Occupation string   `yaml:"occupation"`
	Prompt     string   `yaml:"prompt"`
	Images     []string `yaml:"images,omitempty"`
	Error      string   `yaml:"error,omitempty"`
}

// SkippedTable records a prompt table that could not be used
type SkippedTable struct {
	Table  string `yaml:"table"`
	Reason string `yaml:"reason"`
}

// RunSummary represents the complete record of a generation run
type RunSummary struct {
	Config   RunConfig      `yaml:"config"`
	Prompts  int            `yaml:"prompts"`
	Images   int            `yaml:"images"`
	Failures int            `yaml:"failures"`
	Skipped  []SkippedTable `yaml:"skipped,omitempty"`
	Results  []PromptResult `yaml:"results"`
}

// Add records a prompt outcome and updates the counters
func (s *RunSummary) Add(r PromptResult) {
	s.Prompts++
	s.Images += len(r.Images)
	if r.Error != "" {
		s.Failures++
	}
	s.Results = append(s.Results, r)
}

// Stamp sets the config timestamp
func (s *RunSummary) Stamp(t time.Time) {
	s.Config.Timestamp = t.Format(timestampLayout)
}

// SaveToYAML writes the summary to <dir>/<model>-<timestamp>.yaml and returns the path
func SaveToYAML(dir string, summary *RunSummary) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", dir, err)
	}
	if summary.Config.Timestamp == "" {
		summary.Stamp(time.Now())
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", summary.Config.Model, summary.Config.Timestamp))

	data, err := yaml.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return filename, nil
}

// LoadYAML reads a summary written by SaveToYAML
func LoadYAML(path string) (*RunSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file: %w", err)
	}
	var summary RunSummary
	if err := yaml.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &summary, nil
}
