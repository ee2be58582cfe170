package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.QualityPreset != "balanced" {
		t.Errorf("QualityPreset = %q, want balanced", cfg.QualityPreset)
	}
	if cfg.WatchInterval != 5 {
		t.Errorf("WatchInterval = %d, want 5", cfg.WatchInterval)
	}
	if cfg.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0", cfg.MaxRetries)
	}
	if len(cfg.ExecutionProviders) != 1 || cfg.ExecutionProviders[0] != "cpu" {
		t.Errorf("ExecutionProviders = %v, want [cpu]", cfg.ExecutionProviders)
	}
	if cfg.Engine.TimeoutMinutes != 30 {
		t.Errorf("Engine.TimeoutMinutes = %d, want 30", cfg.Engine.TimeoutMinutes)
	}
	if cfg.API.Port != DefaultAPIPort {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, DefaultAPIPort)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "swapdeck.yaml")
	content := `
quality_preset: best
watch_interval: 10
max_retries: 2
default_face: demo
face_mappings:
  client_interview.mp4: client.jpg
engine:
  script: /opt/facefusion/facefusion.py
  timeout_minutes: 45
api:
  enabled: true
  port: 9000
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.QualityPreset != "best" {
		t.Errorf("QualityPreset = %q, want best", cfg.QualityPreset)
	}
	if cfg.WatchInterval != 10 {
		t.Errorf("WatchInterval = %d, want 10", cfg.WatchInterval)
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want 2", cfg.MaxRetries)
	}
	if cfg.DefaultFace != "demo" {
		t.Errorf("DefaultFace = %q, want demo", cfg.DefaultFace)
	}
	if cfg.FaceMappings["client_interview.mp4"] != "client.jpg" {
		t.Errorf("FaceMappings = %v, want client_interview.mp4 -> client.jpg", cfg.FaceMappings)
	}
	if cfg.Engine.Script != "/opt/facefusion/facefusion.py" {
		t.Errorf("Engine.Script = %q", cfg.Engine.Script)
	}
	if !cfg.API.Enabled || cfg.API.Port != 9000 {
		t.Errorf("API = %+v, want enabled on port 9000", cfg.API)
	}
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("quality_preset: [oops"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvQualityPreset, "fast")
	t.Setenv(EnvWatchInterval, "15")
	t.Setenv(EnvMaxRetries, "3")
	t.Setenv(EnvEngineScript, "/custom/engine.py")
	t.Setenv(EnvEnginePython, "/usr/bin/python3")

	path := filepath.Join(t.TempDir(), "swapdeck.yaml")
	if err := os.WriteFile(path, []byte("quality_preset: best\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.QualityPreset != "fast" {
		t.Errorf("env should override file: QualityPreset = %q, want fast", cfg.QualityPreset)
	}
	if cfg.WatchInterval != 15 {
		t.Errorf("WatchInterval = %d, want 15", cfg.WatchInterval)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.Engine.Script != "/custom/engine.py" {
		t.Errorf("Engine.Script = %q", cfg.Engine.Script)
	}
	if cfg.Engine.Python != "/usr/bin/python3" {
		t.Errorf("Engine.Python = %q", cfg.Engine.Python)
	}
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	t.Setenv(EnvWatchInterval, "soon")
	path := filepath.Join(t.TempDir(), "swapdeck.yaml")
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for non-numeric watch interval")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown preset",
			mutate:  func(c *Config) { c.QualityPreset = "ultra" },
			wantErr: "quality_preset",
		},
		{
			name:    "watch interval too small",
			mutate:  func(c *Config) { c.WatchInterval = 0 },
			wantErr: "watch_interval",
		},
		{
			name:    "watch interval too large",
			mutate:  func(c *Config) { c.WatchInterval = 120 },
			wantErr: "watch_interval",
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.MaxRetries = -1 },
			wantErr: "max_retries",
		},
		{
			name:    "missing engine script",
			mutate:  func(c *Config) { c.Engine.Script = "" },
			wantErr: "engine.script",
		},
		{
			name:    "zero engine timeout",
			mutate:  func(c *Config) { c.Engine.TimeoutMinutes = 0 },
			wantErr: "timeout_minutes",
		},
		{
			name:    "bad api port",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: "api.port",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestDurations(t *testing.T) {
	cfg := Default()
	cfg.WatchInterval = 7
	cfg.Engine.TimeoutMinutes = 45
	if got := cfg.WatchIntervalDuration(); got != 7*time.Second {
		t.Errorf("WatchIntervalDuration = %v, want 7s", got)
	}
	if got := cfg.EngineTimeout(); got != 45*time.Minute {
		t.Errorf("EngineTimeout = %v, want 45m", got)
	}
}

func TestDefaultYAML_ParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swapdeck.yaml")
	if err := os.WriteFile(path, DefaultYAML(), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("generated config should load cleanly: %v", err)
	}
	if cfg.QualityPreset != DefaultQualityPreset {
		t.Errorf("QualityPreset = %q, want %q", cfg.QualityPreset, DefaultQualityPreset)
	}
}
