package worldmap

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/aretw0/waypoint/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultMap []byte

// Default returns the built-in three-room map.
func Default() *Map {
	m, err := Parse(defaultMap)
	if err != nil {
		panic(fmt.Sprintf("built-in map is invalid: %v", err))
	}
	return m
}

// Load reads and validates a map file.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates a YAML map.
func Parse(data []byte) (*Map, error) {
	var m Map
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse map: %w", err)
	}
	m.index()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// UnmarshalYAML accepts the "close" and "opened" spellings for the door status.
func (d *Door) UnmarshalYAML(value *yaml.Node) error {
	type plain struct {
		Name   string `yaml:"name"`
		From   string `yaml:"from"`
		To     string `yaml:"to"`
		Status string `yaml:"status"`
	}
	var raw plain
	if err := value.Decode(&raw); err != nil {
		return err
	}

	status := domain.DoorClosed
	if raw.Status != "" {
		var ok bool
		status, ok = domain.ParseDoorStatus(raw.Status)
		if !ok {
			return fmt.Errorf("line %d: door %q has invalid status %q", value.Line, raw.Name, raw.Status)
		}
	}

	*d = Door{Name: raw.Name, From: raw.From, To: raw.To, Status: status}
	return nil
}

// Marshal encodes the map as YAML.
func (m *Map) Marshal() ([]byte, error) {
	return yaml.Marshal(m)
}
