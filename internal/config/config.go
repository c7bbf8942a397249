package config

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	OutDir      string `yaml:"out_dir"`
	Concurrency int    `yaml:"concurrency"`

	// Motion detection settings
	Detect DetectConfig `yaml:"detect"`

	// Telemetry extractor settings
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Creation-time fixup settings
	Fixup FixupConfig `yaml:"fixup"`
}

type DetectConfig struct {
	// Maximum sliding-RMS value still considered calm
	Threshold float64 `yaml:"threshold"`
	// Minimum fragment length in seconds
	MinDurationS float64 `yaml:"min_duration_s"`
	// Sliding RMS window length in seconds
	WindowS float64 `yaml:"window_s"`
}

type TelemetryConfig struct {
	Command  string   `yaml:"command"`
	Args     []string `yaml:"args"`
	TimeoutS int      `yaml:"timeout_s"`
}

type FFmpegConfig struct {
	ProbeTimeoutS int `yaml:"probe_timeout_s"`
	RunTimeoutS   int `yaml:"run_timeout_s"`
}

type FixupConfig struct {
	ShiftHours  int      `yaml:"shift_hours"`
	Resolutions []string `yaml:"resolutions"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		OutDir:      ".",
		Concurrency: 4,
		Detect: DetectConfig{
			Threshold:    0.5,
			MinDurationS: 3.0,
			WindowS:      1.0,
		},
		Telemetry: TelemetryConfig{
			Command:  "gpmf-extract",
			Args:     []string{"--stream", "CORI", "--format", "json"},
			TimeoutS: 60,
		},
		FFmpeg: FFmpegConfig{
			ProbeTimeoutS: 10,
			RunTimeoutS:   3600,
		},
		Fixup: FixupConfig{
			ShiftHours:  2,
			Resolutions: []string{"1920x1080", "1080x1920"},
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".steadycut", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
