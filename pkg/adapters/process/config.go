package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// CommandConfig represents one external command of a robot driver.
type CommandConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// ConfigFile represents the structure of drivers.yaml.
// Operators maps operator names to commands; Sense prints the world state as JSON.
type ConfigFile struct {
	Sense     *CommandConfig  `yaml:"sense" json:"sense"`
	Operators []CommandConfig `yaml:"operators" json:"operators"`
}

// LoadDriver reads a driver configuration file (YAML or JSON).
func LoadDriver(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read driver config: %w", err)
	}

	var cfg ConfigFile
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	return &cfg, nil
}

// Registry returns the operator commands keyed by name, skipping unnamed entries.
func (c *ConfigFile) Registry() map[string]CommandConfig {
	out := make(map[string]CommandConfig, len(c.Operators))
	for _, op := range c.Operators {
		if op.Name == "" {
			continue
		}
		out[op.Name] = op
	}
	return out
}
