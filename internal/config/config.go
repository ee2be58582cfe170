// Package config provides configuration management for the swapdeck agent.
// Configuration is read from an optional YAML file merged over defaults, with
// environment variable overrides on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Default values
	DefaultQualityPreset        = "balanced"
	DefaultWatchIntervalSeconds = 5
	DefaultMaxRetries           = 0
	DefaultEngineScript         = "facefusion/facefusion.py"
	DefaultEngineTimeoutMinutes = 30
	DefaultLogLevel             = "info"
	DefaultAPIPort              = 8790

	// Bounds
	MinWatchIntervalSeconds = 1
	MaxWatchIntervalSeconds = 60

	// Environment variable names
	EnvWorkspaceDir  = "SWAPDECK_WORKSPACE"
	EnvLogLevel      = "SWAPDECK_LOG_LEVEL"
	EnvQualityPreset = "SWAPDECK_QUALITY_PRESET"
	EnvWatchInterval = "SWAPDECK_WATCH_INTERVAL"
	EnvMaxRetries    = "SWAPDECK_MAX_RETRIES"
	EnvEngineScript  = "SWAPDECK_ENGINE_SCRIPT"
	EnvEnginePython  = "SWAPDECK_ENGINE_PYTHON"
	EnvAPIPort       = "SWAPDECK_API_PORT"
)

// QualityPresets are the recognized values of quality_preset.
var QualityPresets = []string{"fast", "balanced", "best"}

// Config is the agent configuration.
type Config struct {
	WorkspaceDir       string            `yaml:"workspace_dir"`
	LogLevel           string            `yaml:"log_level"`
	QualityPreset      string            `yaml:"quality_preset"`
	WatchInterval      int               `yaml:"watch_interval"` // seconds
	MaxRetries         int               `yaml:"max_retries"`
	ExecutionProviders []string          `yaml:"execution_providers"`
	FaceMappings       map[string]string `yaml:"face_mappings"`
	DefaultFace        string            `yaml:"default_face"`
	Engine             EngineConfig      `yaml:"engine"`
	API                APIConfig         `yaml:"api"`
}

// EngineConfig locates and bounds the external face-swap engine.
type EngineConfig struct {
	Script         string `yaml:"script"`
	Python         string `yaml:"python"` // empty = auto-detect
	TimeoutMinutes int    `yaml:"timeout_minutes"`
}

// APIConfig controls the optional local status API served during watch mode.
type APIConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	return &Config{
		WorkspaceDir:       ".",
		LogLevel:           DefaultLogLevel,
		QualityPreset:      DefaultQualityPreset,
		WatchInterval:      DefaultWatchIntervalSeconds,
		MaxRetries:         DefaultMaxRetries,
		ExecutionProviders: []string{"cpu"},
		Engine: EngineConfig{
			Script:         DefaultEngineScript,
			TimeoutMinutes: DefaultEngineTimeoutMinutes,
		},
		API: APIConfig{
			Enabled: false,
			Port:    DefaultAPIPort,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (when
// path is empty, swapdeck.yaml in the current directory is used if present),
// then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	optional := false
	if path == "" {
		path = "swapdeck.yaml"
		optional = true
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse %s: %w", path, err)
		}
	case os.IsNotExist(err) && optional:
		// No config file; defaults + env only.
	default:
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvWorkspaceDir); v != "" {
		c.WorkspaceDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvQualityPreset); v != "" {
		c.QualityPreset = v
	}
	if v := os.Getenv(EnvWatchInterval); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvWatchInterval, err)
		}
		c.WatchInterval = n
	}
	if v := os.Getenv(EnvMaxRetries); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMaxRetries, err)
		}
		c.MaxRetries = n
	}
	if v := os.Getenv(EnvEngineScript); v != "" {
		c.Engine.Script = v
	}
	if v := os.Getenv(EnvEnginePython); v != "" {
		c.Engine.Python = v
	}
	if v := os.Getenv(EnvAPIPort); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAPIPort, err)
		}
		c.API.Port = n
	}
	return nil
}

// Validate rejects malformed configuration before any processing starts.
func (c *Config) Validate() error {
	valid := false
	for _, p := range QualityPresets {
		if c.QualityPreset == p {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid quality_preset %q: must be one of %s",
			c.QualityPreset, strings.Join(QualityPresets, ", "))
	}

	if c.WatchInterval < MinWatchIntervalSeconds || c.WatchInterval > MaxWatchIntervalSeconds {
		return fmt.Errorf("invalid watch_interval %d: must be between %d and %d seconds",
			c.WatchInterval, MinWatchIntervalSeconds, MaxWatchIntervalSeconds)
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("invalid max_retries %d: must be >= 0", c.MaxRetries)
	}

	if c.Engine.Script == "" {
		return fmt.Errorf("engine.script is required")
	}
	if c.Engine.TimeoutMinutes < 1 {
		return fmt.Errorf("invalid engine.timeout_minutes %d: must be >= 1", c.Engine.TimeoutMinutes)
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api.port %d: must be between 1 and 65535", c.API.Port)
	}

	return nil
}

// WatchIntervalDuration returns watch_interval as a duration.
func (c *Config) WatchIntervalDuration() time.Duration {
	return time.Duration(c.WatchInterval) * time.Second
}

// EngineTimeout returns the per-video wall-clock bound.
func (c *Config) EngineTimeout() time.Duration {
	return time.Duration(c.Engine.TimeoutMinutes) * time.Minute
}

// DefaultYAML renders the config file written by `swapdeck init`.
func DefaultYAML() []byte {
	return []byte(`# swapdeck configuration
quality_preset: balanced   # fast, balanced, best
watch_interval: 5          # seconds between input scans in watch mode (1-60)
max_retries: 0             # engine retries per video before routing to errors/
execution_providers: [cpu] # passed through to the engine

engine:
  script: facefusion/facefusion.py
  # python: /usr/local/bin/python3
  timeout_minutes: 30

api:
  enabled: false
  port: 8790

# Explicit overrides consulted before filename matching:
# face_mappings:
#   client_interview.mp4: client.jpg
# default_face: demo
`)
}
