// Package config loads waypoint.yaml and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "waypoint.yaml"

// Config is the full application configuration.
type Config struct {
	Map       MapConfig       `mapstructure:"map" yaml:"map"`
	Planner   PlannerConfig   `mapstructure:"planner" yaml:"planner"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Simulator SimulatorConfig `mapstructure:"simulator" yaml:"simulator"`
	Driver    DriverConfig    `mapstructure:"driver" yaml:"driver"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	Store     StoreConfig     `mapstructure:"store" yaml:"store"`
	HTTP      HTTPConfig      `mapstructure:"http" yaml:"http"`
	MCP       MCPConfig       `mapstructure:"mcp" yaml:"mcp"`
	Rearrange RearrangeConfig `mapstructure:"rearrange" yaml:"rearrange"`
}

// MapConfig selects the map file; empty means the built-in map.
type MapConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type PlannerConfig struct {
	Verbosity int `mapstructure:"verbosity" yaml:"verbosity"`
	MaxDepth  int `mapstructure:"max_depth" yaml:"max_depth"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
}

// SimulatorConfig tunes the bundled simulator.
type SimulatorConfig struct {
	StepDelay            time.Duration `mapstructure:"step_delay" yaml:"step_delay"`
	Dynamic              bool          `mapstructure:"dynamic" yaml:"dynamic"`
	ReshuffleProbability float64       `mapstructure:"reshuffle_probability" yaml:"reshuffle_probability"`
	Seed                 uint64        `mapstructure:"seed" yaml:"seed"`
}

// DriverConfig points at a process driver file; when set it replaces the simulator.
type DriverConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// RedisConfig enables the redis mission store and robot lock when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
	LockTTL  time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`
}

// StoreConfig selects a file mission store when Dir is set and Redis is not.
// Key, a base64 AES-256 key, encrypts mission records at rest in either store.
type StoreConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
	Key string `mapstructure:"key" yaml:"key"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type MCPConfig struct {
	Transport string `mapstructure:"transport" yaml:"transport"`
	Port      int    `mapstructure:"port" yaml:"port"`
}

type RearrangeConfig struct {
	Constraint string `mapstructure:"constraint" yaml:"constraint"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Planner: PlannerConfig{MaxDepth: 1000},
		Log:     LogConfig{Level: "info"},
		Simulator: SimulatorConfig{
			ReshuffleProbability: 0.5,
			Seed:                 1,
		},
		Redis:     RedisConfig{Prefix: "waypoint:mission:", LockTTL: 5 * time.Minute},
		HTTP:      HTTPConfig{Addr: ":8080"},
		MCP:       MCPConfig{Transport: "stdio", Port: 8080},
		Rearrange: RearrangeConfig{Constraint: "box.color != room.color"},
	}
}

// Load reads path over the defaults and then applies WAYPOINT_* environment overrides.
// An empty path tries DefaultPath; a missing default file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := Parse(data, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Parse decodes YAML into cfg. Keys absent from data keep their current value.
func Parse(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid yaml: %w", err)
	}
	if raw == nil {
		return nil
	}
	return decode(raw, cfg)
}

func decode(input any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			intToDurationSecondsHook,
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// intToDurationSecondsHook reads bare numbers as seconds for duration fields.
func intToDurationSecondsHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	}
	return data, nil
}

var envKeys = map[string]string{
	"WAYPOINT_MAP":            "map.path",
	"WAYPOINT_LOG_LEVEL":      "log.level",
	"WAYPOINT_REDIS_ADDR":     "redis.addr",
	"WAYPOINT_REDIS_PASSWORD": "redis.password",
	"WAYPOINT_REDIS_DB":       "redis.db",
	"WAYPOINT_HTTP_ADDR":      "http.addr",
	"WAYPOINT_MCP_PORT":       "mcp.port",
	"WAYPOINT_DRIVER":         "driver.path",
	"WAYPOINT_STORE_DIR":      "store.dir",
	"WAYPOINT_STORE_KEY":      "store.key",
}

// applyEnv overlays the environment through the same decoder as the file, so values
// are converted and validated the same way.
func applyEnv(cfg *Config) error {
	overlay := map[string]any{}
	for env, key := range envKeys {
		v, ok := os.LookupEnv(env)
		if !ok {
			continue
		}
		section, field, _ := strings.Cut(key, ".")
		m, _ := overlay[section].(map[string]any)
		if m == nil {
			m = map[string]any{}
			overlay[section] = m
		}
		m[field] = v
	}
	if len(overlay) == 0 {
		return nil
	}
	if err := decode(overlay, cfg); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}
