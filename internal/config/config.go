package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	Source  SourceConfig  `toml:"source"`
	Output  OutputConfig  `toml:"output"`
	Storage StorageConfig `toml:"storage"`
	Enrich  EnrichConfig  `toml:"enrich"`
	Server  ServerConfig  `toml:"server"`
}

// SourceConfig describes where the listing page comes from.
type SourceConfig struct {
	URL            string `toml:"url"`
	Input          string `toml:"input"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
}

// Timeout returns the fetch timeout as a duration.
func (s SourceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// OutputConfig holds export settings.
type OutputConfig struct {
	Path   string `toml:"path"`
	Format string `toml:"format"`
	Echo   bool   `toml:"echo"`
}

// StorageConfig holds archive settings.
type StorageConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// EnrichConfig holds date backfill settings.
type EnrichConfig struct {
	MissingDates  bool `toml:"missing_dates"`
	MaxConcurrent int  `toml:"max_concurrent"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `toml:"port"`
}

const (
	defaultInput          = "data/cases.html"
	defaultTimeoutSeconds = 10
	defaultOutputPath     = "data/cases.json"
	defaultFormat         = "json"
	defaultStoragePath    = "data/cases.db"
	defaultMaxConcurrent  = 4
	defaultPort           = 8080
)

const defaultConfigContent = `[source]
url = ""                          # Fetch this page instead of reading input
input = "data/cases.html"
base_url = ""                     # Base for relative links (derived from url when empty)
timeout_seconds = 10
user_agent = ""                   # Empty uses a desktop browser User-Agent

[output]
path = "data/cases.json"
format = "json"                   # "json" or "yaml"
echo = true

[storage]
enabled = false
path = "data/cases.db"

[enrich]
missing_dates = false
max_concurrent = 4

[server]
port = 8080
`

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Explicit zeros are errors, not requests for the default.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg, md)
	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file has been written yet.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg, toml.MetaData{})
	return &cfg
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}
	if md.IsDefined("source", "timeout_seconds") {
		if cfg.Source.TimeoutSeconds < 1 {
			return fmt.Errorf("invalid source.timeout_seconds %d: must be >= 1", cfg.Source.TimeoutSeconds)
		}
	}
	if md.IsDefined("enrich", "max_concurrent") {
		if cfg.Enrich.MaxConcurrent < 1 {
			return fmt.Errorf("invalid enrich.max_concurrent %d: must be >= 1", cfg.Enrich.MaxConcurrent)
		}
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields. output.echo
// defaults to true only when the file does not mention it, so an explicit
// "echo = false" is respected.
func applyDefaults(cfg *Config, md toml.MetaData) {
	if cfg.Source.Input == "" {
		cfg.Source.Input = defaultInput
	}
	if cfg.Source.TimeoutSeconds == 0 {
		cfg.Source.TimeoutSeconds = defaultTimeoutSeconds
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = defaultOutputPath
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = defaultFormat
	}
	if !md.IsDefined("output", "echo") {
		cfg.Output.Echo = true
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultStoragePath
	}
	if cfg.Enrich.MaxConcurrent == 0 {
		cfg.Enrich.MaxConcurrent = defaultMaxConcurrent
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CASESCOUT_SOURCE_URL"); v != "" {
		cfg.Source.URL = v
	}
	if v := os.Getenv("CASESCOUT_BASE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("CASESCOUT_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
}

// Validate checks that configuration values are within acceptable ranges.
// The CLI calls it again after applying flag overrides.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "json", "yaml":
		// valid
	default:
		return fmt.Errorf("invalid output.format %q: must be \"json\" or \"yaml\"", c.Output.Format)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	if c.Source.TimeoutSeconds < 1 {
		return fmt.Errorf("invalid source.timeout_seconds %d: must be >= 1", c.Source.TimeoutSeconds)
	}

	if c.Enrich.MaxConcurrent < 1 {
		return fmt.Errorf("invalid enrich.max_concurrent %d: must be >= 1", c.Enrich.MaxConcurrent)
	}

	if c.Storage.Enabled && c.Storage.Path == "" {
		return errors.New("storage.path must be set when storage is enabled")
	}

	return nil
}
