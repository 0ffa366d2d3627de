// Package config handles configuration loading from YAML files and
// environment variables. Configuration precedence: environment variables >
// config file > defaults. The telemetry core only ever receives copies of
// the loaded configuration; hot reloads travel to the orchestrator as
// commands, never as in-place mutation.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a wrapper around time.Duration that supports YAML
// unmarshaling from human-readable strings like "500ms", "1s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all telemetry configuration.
type Config struct {
	General      GeneralConfig      `yaml:"general"`
	Screens      []ScreenConfig     `yaml:"screens"`
	Weather      WeatherConfig      `yaml:"weather"`
	CustomFiles  []CustomFile       `yaml:"custom_files"`
	Productivity ProductivityConfig `yaml:"productivity"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// GeneralConfig holds collection cadence settings.
type GeneralConfig struct {
	// UpdateInterval is the collection cycle cadence.
	UpdateInterval Duration `yaml:"update_interval"`
}

// ScreenConfig lists the metric ids one display surface shows. The union
// of all screens drives which collectors are instantiated.
type ScreenConfig struct {
	Metrics []string `yaml:"metrics"`
}

// WeatherConfig holds the forecast fetch settings.
type WeatherConfig struct {
	Enabled bool    `yaml:"enabled"`
	Lat     float64 `yaml:"lat"`
	Lon     float64 `yaml:"lon"`
	// BaseURL overrides the forecast endpoint; empty selects production.
	BaseURL string `yaml:"base_url,omitempty"`
}

// CustomFile describes one user-configured file surfaced as a metric.
type CustomFile struct {
	// Name is the display label (e.g. "Server Log").
	Name string `yaml:"name"`
	// Path is the file to read (e.g. "/home/me/status.txt").
	Path string `yaml:"path"`
	// MetricID is the id used in screen configs (e.g. "server_status").
	MetricID string `yaml:"metric_id"`
	// Tail selects only the last line of the file.
	Tail bool `yaml:"tail"`
}

// ProductivityConfig holds code-delta and insight settings.
type ProductivityConfig struct {
	// Repos lists local repository paths to monitor.
	Repos []string `yaml:"repos"`
	// BatchCap is the maximum repositories scanned per cycle.
	BatchCap int `yaml:"batch_cap"`
	// InsightEnabled turns on the hourly insight probe.
	InsightEnabled bool `yaml:"insight_enabled"`
	// InsightURL is the local LLM endpoint to probe.
	InsightURL string `yaml:"insight_url"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			UpdateInterval: Duration{1 * time.Second},
		},
		Screens: []ScreenConfig{
			{Metrics: []string{
				"cpu_usage", "ram_usage", "disk_usage",
				"network_details", "cpu_temp", "gpu_temp",
			}},
		},
		Weather: WeatherConfig{
			Enabled: false,
			Lat:     0,
			Lon:     0,
		},
		Productivity: ProductivityConfig{
			BatchCap:   5,
			InsightURL: "http://localhost:11434",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromBytes parses YAML configuration from a byte slice and merges
// with defaults. Environment variables take highest precedence.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config data: %w", err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Load reads configuration from a YAML file and merges with defaults.
// A missing file is not an error; defaults and env overrides apply.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromBytes(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return LoadFromBytes(nil)
	}
	return LoadFromBytes(data)
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if level := os.Getenv("GP_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if url := os.Getenv("GP_WEATHER_URL"); url != "" {
		cfg.Weather.BaseURL = url
	}
	if url := os.Getenv("GP_INSIGHT_URL"); url != "" {
		cfg.Productivity.InsightURL = url
	}
}

// Clone returns a deep copy, so a reloaded configuration can be handed to
// the orchestrator without sharing slices with the owner's copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Screens = make([]ScreenConfig, len(c.Screens))
	for i, s := range c.Screens {
		out.Screens[i] = ScreenConfig{Metrics: append([]string(nil), s.Metrics...)}
	}
	out.CustomFiles = append([]CustomFile(nil), c.CustomFiles...)
	out.Productivity.Repos = append([]string(nil), c.Productivity.Repos...)
	return &out
}

// Validate checks that the configuration is usable. The path checker is
// advisory here: unsafe paths are reported but not fatal, because the
// collectors enforce the same predicate as a hard deny at read time.
func (c *Config) Validate(isSafe func(string) bool) error {
	if c.General.UpdateInterval.Duration < 500*time.Millisecond {
		return fmt.Errorf("update_interval must be >= 500ms (got %v)", c.General.UpdateInterval.Duration)
	}
	if c.Weather.Lat < -90 || c.Weather.Lat > 90 {
		return fmt.Errorf("weather lat out of range: %v", c.Weather.Lat)
	}
	if c.Weather.Lon < -180 || c.Weather.Lon > 180 {
		return fmt.Errorf("weather lon out of range: %v", c.Weather.Lon)
	}
	if c.Productivity.BatchCap < 1 {
		return fmt.Errorf("productivity batch_cap must be >= 1 (got %d)", c.Productivity.BatchCap)
	}
	if isSafe != nil {
		var unsafe []string
		for _, f := range c.CustomFiles {
			if !isSafe(f.Path) {
				unsafe = append(unsafe, f.Path)
			}
		}
		for _, r := range c.Productivity.Repos {
			if !isSafe(r) {
				unsafe = append(unsafe, r)
			}
		}
		if len(unsafe) > 0 {
			return &UnsafePathsError{Paths: unsafe}
		}
	}
	return nil
}

// UnsafePathsError reports configured paths the safety predicate rejected.
// Callers may log it and continue; the collectors will deny the paths again
// at read time.
type UnsafePathsError struct {
	Paths []string
}

func (e *UnsafePathsError) Error() string {
	return fmt.Sprintf("configuration references %d unsafe path(s): %v", len(e.Paths), e.Paths)
}
