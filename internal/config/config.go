// Package config loads finterp settings with priority flags > env > file >
// defaults. Flags are applied by the CLI after Load returns.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FINTERP_"

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config contains every finterp setting.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after Load.
type Config struct {
	// Filter contains deduplication and filtering settings.
	Filter FilterConfig `json:"filter" yaml:"filter"`

	// Store contains canonical store settings.
	Store StoreConfig `json:"store" yaml:"store"`

	// Observability contains logging, metrics and tracing settings.
	Observability ObservabilityConfig `json:"observability" yaml:"observability"`
}

// FilterConfig controls how interpretations are read and deduplicated.
type FilterConfig struct {
	Mode            string        `json:"mode" yaml:"mode" validate:"oneof=canonical pairwise"`
	Workers         int           `json:"workers" yaml:"workers" validate:"gte=0"`
	IgnoreConstants bool          `json:"ignore_constants" yaml:"ignore_constants"`
	AllowIncomplete bool          `json:"allow_incomplete" yaml:"allow_incomplete"`
	CheckSymbols    []string      `json:"check_symbols" yaml:"check_symbols"`
	OutputSymbols   []string      `json:"output_symbols" yaml:"output_symbols"`
	Discriminators  string        `json:"discriminators" yaml:"discriminators"`
	Timeout         time.Duration `json:"timeout" yaml:"timeout" validate:"gte=0"`
}

// StoreConfig controls the persistent canonical store. An empty Path and
// InMemory false disable the store.
type StoreConfig struct {
	Path       string        `json:"path" yaml:"path"`
	InMemory   bool          `json:"in_memory" yaml:"in_memory"`
	SyncWrites bool          `json:"sync_writes" yaml:"sync_writes"`
	GCInterval time.Duration `json:"gc_interval" yaml:"gc_interval" validate:"gte=0"`
}

// Enabled reports whether a store should be opened.
func (s StoreConfig) Enabled() bool { return s.Path != "" || s.InMemory }

// ObservabilityConfig controls logging, metrics and tracing.
type ObservabilityConfig struct {
	LogLevel    string `json:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	MetricsAddr string `json:"metrics_addr" yaml:"metrics_addr" validate:"omitempty,hostname_port"`
	Tracing     bool   `json:"tracing" yaml:"tracing"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Filter: FilterConfig{
			Mode:    "canonical",
			Workers: 0,
		},
		Store: StoreConfig{
			GCInterval: 10 * time.Minute,
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
		},
	}
}

// Load loads configuration with priority: overrides > env > file > defaults.
//
// Inputs:
//   - path: Path to a YAML/JSON config file (optional, can be empty). A
//     missing file is not an error.
//   - overrides: Applied in order after the environment, before
//     validation. The CLI uses them for explicitly set flags.
//
// Outputs:
//   - Config: Merged configuration.
//   - error: Non-nil if the file exists but is invalid, or validation fails.
func Load(path string, overrides ...func(*Config)) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	loadEnv(&cfg)
	for _, o := range overrides {
		o(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func envBool(v string) bool { return v == "true" || v == "1" }

func envList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func loadEnv(cfg *Config) {
	get := func(name string) string { return os.Getenv(EnvPrefix + name) }

	// Filter
	if v := get("MODE"); v != "" {
		cfg.Filter.Mode = v
	}
	if v := get("WORKERS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Filter.Workers = i
		}
	}
	if v := get("IGNORE_CONSTANTS"); v != "" {
		cfg.Filter.IgnoreConstants = envBool(v)
	}
	if v := get("ALLOW_INCOMPLETE"); v != "" {
		cfg.Filter.AllowIncomplete = envBool(v)
	}
	if v := get("CHECK_SYMBOLS"); v != "" {
		cfg.Filter.CheckSymbols = envList(v)
	}
	if v := get("OUTPUT_SYMBOLS"); v != "" {
		cfg.Filter.OutputSymbols = envList(v)
	}
	if v := get("DISCRIMINATORS"); v != "" {
		cfg.Filter.Discriminators = v
	}
	if v := get("TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Filter.Timeout = d
		}
	}

	// Store
	if v := get("STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := get("STORE_IN_MEMORY"); v != "" {
		cfg.Store.InMemory = envBool(v)
	}
	if v := get("STORE_SYNC_WRITES"); v != "" {
		cfg.Store.SyncWrites = envBool(v)
	}

	// Observability
	if v := get("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = strings.ToLower(v)
	}
	if v := get("METRICS_ADDR"); v != "" {
		cfg.Observability.MetricsAddr = v
	}
	if v := get("TRACING"); v != "" {
		cfg.Observability.Tracing = envBool(v)
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that the configuration is valid.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s=%v failed %q", ErrInvalidConfig, fe.Namespace(), fe.Value(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
