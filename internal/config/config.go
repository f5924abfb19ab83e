// Package config provides configuration types, defaults, loading and
// persistence for strata.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zjrosen/strata/internal/log"
	"github.com/zjrosen/strata/internal/tracing"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

var envKeyReplacer = strings.NewReplacer(".", "_")

// Config holds all configuration options for strata.
type Config struct {
	Debug    bool           `mapstructure:"debug"`
	LogPath  string         `mapstructure:"log_path"`
	LogLevel string         `mapstructure:"log_level"`
	Counter  CounterConfig  `mapstructure:"counter"`
	Cache    CacheConfig    `mapstructure:"cache"`
	UI       UIConfig       `mapstructure:"ui"`
	Tracing  tracing.Config `mapstructure:"tracing"`
}

// CounterConfig seeds the demo counter domain.
type CounterConfig struct {
	Start          int    `mapstructure:"start" yaml:"start"`
	Step           int    `mapstructure:"step" yaml:"step"`
	MilestoneEvery int    `mapstructure:"milestone_every" yaml:"milestone_every"` // 0 disables milestones
	Label          string `mapstructure:"label" yaml:"label"`
}

// CacheConfig controls the domain query cache.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// UIConfig holds user interface options.
type UIConfig struct {
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default) or "light"
	ShowLog       bool   `mapstructure:"show_log"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		LogPath:  "debug.log",
		LogLevel: "debug",
		Counter: CounterConfig{
			Start:          0,
			Step:           1,
			MilestoneEvery: 10,
			Label:          "clicks",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     30 * time.Second,
		},
		UI: UIConfig{
			MarkdownStyle: "dark",
			ShowLog:       true,
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// SetDefaults registers Defaults() on v so partial config files and env
// overrides merge onto them.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("debug", d.Debug)
	v.SetDefault("log_path", d.LogPath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("counter.start", d.Counter.Start)
	v.SetDefault("counter.step", d.Counter.Step)
	v.SetDefault("counter.milestone_every", d.Counter.MilestoneEvery)
	v.SetDefault("counter.label", d.Counter.Label)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("ui.markdown_style", d.UI.MarkdownStyle)
	v.SetDefault("ui.show_log", d.UI.ShowLog)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
}

// Load reads the config file at path, or Defaults() alone when path is
// empty. STRATA_* env vars override file values (STRATA_COUNTER_STEP sets
// counter.step). The result is validated.
func Load(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("strata")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
		log.Debug(log.CatConfig, "config loaded", "path", path)
	}
	return Decode(v)
}

// Decode unmarshals v into a Config and validates it.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first problem found in cfg.
func Validate(cfg Config) error {
	if cfg.Counter.Step == 0 {
		return fmt.Errorf("%w: counter.step must not be 0", ErrInvalid)
	}
	if cfg.Counter.MilestoneEvery < 0 {
		return fmt.Errorf("%w: counter.milestone_every must be >= 0, got %d", ErrInvalid, cfg.Counter.MilestoneEvery)
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("%w: cache.ttl must be >= 0, got %s", ErrInvalid, cfg.Cache.TTL)
	}
	switch cfg.UI.MarkdownStyle {
	case "", "dark", "light":
	default:
		return fmt.Errorf("%w: ui.markdown_style must be dark or light, got %q", ErrInvalid, cfg.UI.MarkdownStyle)
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateTracing checks tracing configuration. Empty values use defaults.
func ValidateTracing(t tracing.Config) error {
	switch t.Exporter {
	case "", tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
	default:
		return fmt.Errorf("%w: tracing.exporter must be none, file, stdout or otlp, got %q", ErrInvalid, t.Exporter)
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		return fmt.Errorf("%w: tracing.sample_rate must be between 0 and 1, got %v", ErrInvalid, t.SampleRate)
	}
	return nil
}

// DefaultPath returns ~/.config/strata/config.yaml, or "" without a home dir.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "strata", "config.yaml")
}

// DefaultTracesFilePath returns the trace file next to the default config.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "strata", "traces", "traces.jsonl")
}

// DefaultConfigTemplate returns the default config as YAML with comments.
func DefaultConfigTemplate() string {
	return `# strata configuration

# Write a debug log (same as --debug)
debug: false
log_path: debug.log
log_level: debug   # debug, info, warn or error

# Demo counter domain
counter:
  start: 0
  step: 1              # added by each increment, must not be 0
  milestone_every: 10  # emit a milestone every N increments, 0 disables
  label: clicks

# Query cache: cacheable queries are answered from memory until the next command
cache:
  enabled: true
  ttl: 30s

ui:
  markdown_style: dark  # dark or light
  show_log: true        # show the live log pane

# OpenTelemetry spans for every command and query
# tracing:
#   enabled: false
#   exporter: file                 # none, file, stdout or otlp
#   file_path: ~/.config/strata/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0
`
}

// WriteDefaultConfig creates a commented default config at configPath,
// creating the parent directory if needed.
func WriteDefaultConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}
	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
