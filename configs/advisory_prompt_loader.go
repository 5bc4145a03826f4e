package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AdvisoryPromptConfig defines the persona sent to the remote advisory backend.
type AdvisoryPromptConfig struct {
	System struct {
		Role     string `yaml:"role"`
		Version  string `yaml:"version"`
		Language string `yaml:"language"`
	} `yaml:"system"`

	SystemInfo struct {
		Name    string `yaml:"name"`
		Purpose string `yaml:"purpose"`
	} `yaml:"system_info"`

	AgentModes []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"agent_modes"`

	Tone struct {
		Style       string `yaml:"style"`
		Personality string `yaml:"personality"`
	} `yaml:"tone"`

	Constraints []string `yaml:"constraints"`
}

// LoadAdvisoryPrompt reads the advisory prompt configuration. A missing file
// is not fatal: the backend falls back to its server-side default persona.
func LoadAdvisoryPrompt(path string) (*AdvisoryPromptConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read advisory prompt %s: %w", path, err)
	}

	var cfg AdvisoryPromptConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse advisory prompt %s: %w", path, err)
	}
	return &cfg, nil
}

// BuildSystemContext flattens the prompt config into the context string the
// advisory backend accepts.
func (c *AdvisoryPromptConfig) BuildSystemContext() string {
	var b strings.Builder
	if c.System.Role != "" {
		b.WriteString(c.System.Role)
		b.WriteString("\n")
	}
	if c.SystemInfo.Purpose != "" {
		b.WriteString(c.SystemInfo.Purpose)
		b.WriteString("\n")
	}
	if c.Tone.Style != "" {
		b.WriteString("Tone: " + c.Tone.Style + "\n")
	}
	for _, constraint := range c.Constraints {
		b.WriteString("- " + constraint + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
