package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeTestConfig is a helper that writes a TOML config file to a temp directory
// and returns its path.
func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

// clearEnv blanks the override variables so the host environment cannot leak
// into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CASESCOUT_SOURCE_URL", "")
	t.Setenv("CASESCOUT_BASE_URL", "")
	t.Setenv("CASESCOUT_STORAGE_PATH", "")
}

func TestLoad_ValidConfig(t *testing.T) {
	clearEnv(t)
	content := `
[source]
url = "https://ads.vk.com/cases"
input = "pages/cases.html"
base_url = "https://example.com"
timeout_seconds = 30
user_agent = "casescout-test"

[output]
path = "out/cases.yaml"
format = "yaml"
echo = false

[storage]
enabled = true
path = "out/archive.db"

[enrich]
missing_dates = true
max_concurrent = 2

[server]
port = 9090
`
	path := writeTestConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) unexpected error: %v", path, err)
	}

	// Source config
	if cfg.Source.URL != "https://ads.vk.com/cases" {
		t.Errorf("Source.URL = %q, want %q", cfg.Source.URL, "https://ads.vk.com/cases")
	}
	if cfg.Source.Input != "pages/cases.html" {
		t.Errorf("Source.Input = %q, want %q", cfg.Source.Input, "pages/cases.html")
	}
	if cfg.Source.BaseURL != "https://example.com" {
		t.Errorf("Source.BaseURL = %q, want %q", cfg.Source.BaseURL, "https://example.com")
	}
	if cfg.Source.Timeout() != 30*time.Second {
		t.Errorf("Source.Timeout() = %v, want %v", cfg.Source.Timeout(), 30*time.Second)
	}
	if cfg.Source.UserAgent != "casescout-test" {
		t.Errorf("Source.UserAgent = %q, want %q", cfg.Source.UserAgent, "casescout-test")
	}

	// Output config
	if cfg.Output.Path != "out/cases.yaml" {
		t.Errorf("Output.Path = %q, want %q", cfg.Output.Path, "out/cases.yaml")
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, "yaml")
	}
	if cfg.Output.Echo {
		t.Errorf("Output.Echo = %v, want %v", cfg.Output.Echo, false)
	}

	// Storage and enrich config
	if !cfg.Storage.Enabled || cfg.Storage.Path != "out/archive.db" {
		t.Errorf("Storage = %+v, want enabled at out/archive.db", cfg.Storage)
	}
	if !cfg.Enrich.MissingDates || cfg.Enrich.MaxConcurrent != 2 {
		t.Errorf("Enrich = %+v, want missing_dates with 2 workers", cfg.Enrich)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
}

func TestLoad_MissingFile_CreatesDefault(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) unexpected error: %v", path, err)
	}

	// File should have been created.
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file not created at %q: %v", path, err)
	}

	if cfg.Source.URL != "" {
		t.Errorf("Source.URL = %q, want empty", cfg.Source.URL)
	}
	if cfg.Source.Input != "data/cases.html" {
		t.Errorf("Source.Input = %q, want %q", cfg.Source.Input, "data/cases.html")
	}
	if cfg.Source.TimeoutSeconds != 10 {
		t.Errorf("Source.TimeoutSeconds = %d, want %d", cfg.Source.TimeoutSeconds, 10)
	}
	if cfg.Output.Path != "data/cases.json" {
		t.Errorf("Output.Path = %q, want %q", cfg.Output.Path, "data/cases.json")
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, "json")
	}
	if !cfg.Output.Echo {
		t.Errorf("Output.Echo = %v, want %v", cfg.Output.Echo, true)
	}
	if cfg.Storage.Enabled {
		t.Errorf("Storage.Enabled = %v, want %v", cfg.Storage.Enabled, false)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	clearEnv(t)
	content := `
[source]

[output]
`
	path := writeTestConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) unexpected error: %v", path, err)
	}

	want := Default()
	if *cfg != *want {
		t.Errorf("Load() = %+v, want defaults %+v", *cfg, *want)
	}
	if !cfg.Output.Echo {
		t.Error("Output.Echo should default to true when omitted")
	}
	if cfg.Enrich.MaxConcurrent != 4 {
		t.Errorf("Enrich.MaxConcurrent = %d, want default %d", cfg.Enrich.MaxConcurrent, 4)
	}
	if cfg.Storage.Path != "data/cases.db" {
		t.Errorf("Storage.Path = %q, want default %q", cfg.Storage.Path, "data/cases.db")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CASESCOUT_SOURCE_URL", "https://env.example/cases")
	t.Setenv("CASESCOUT_BASE_URL", "https://env.example")
	t.Setenv("CASESCOUT_STORAGE_PATH", "/tmp/env.db")

	content := `
[source]
url = "https://file.example/cases"
base_url = "https://file.example"

[storage]
path = "file.db"
`
	path := writeTestConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) unexpected error: %v", path, err)
	}

	if cfg.Source.URL != "https://env.example/cases" {
		t.Errorf("Source.URL = %q, want env value", cfg.Source.URL)
	}
	if cfg.Source.BaseURL != "https://env.example" {
		t.Errorf("Source.BaseURL = %q, want env value", cfg.Source.BaseURL)
	}
	if cfg.Storage.Path != "/tmp/env.db" {
		t.Errorf("Storage.Path = %q, want env value", cfg.Storage.Path)
	}
}

func TestLoad_InvalidFormat(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name   string
		format string
	}{
		{name: "unknown format", format: "xml"},
		{name: "wrong case", format: "JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := `
[output]
format = "` + tt.format + `"
`
			path := writeTestConfig(t, content)

			_, err := Load(path)
			if err == nil {
				t.Fatalf("Load(%q) expected error for format %q, got nil", path, tt.format)
			}
		})
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		port string
	}{
		{name: "zero", port: "0"},
		{name: "negative", port: "-1"},
		{name: "too high", port: "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := `
[server]
port = ` + tt.port + `
`
			path := writeTestConfig(t, content)

			_, err := Load(path)
			if err == nil {
				t.Fatalf("Load(%q) expected error for port %s, got nil", path, tt.port)
			}
		})
	}
}

func TestLoad_InvalidExplicitCounts(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
	}{
		{name: "zero timeout", content: "[source]\ntimeout_seconds = 0\n"},
		{name: "negative timeout", content: "[source]\ntimeout_seconds = -5\n"},
		{name: "zero workers", content: "[enrich]\nmax_concurrent = 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestConfig(t, tt.content)

			if _, err := Load(path); err == nil {
				t.Fatalf("Load(%q) expected error, got nil", path)
			}
		})
	}
}

func TestLoad_MalformedTOML(t *testing.T) {
	path := writeTestConfig(t, "[source\nurl = ")

	if _, err := Load(path); err == nil {
		t.Fatal("Load expected parse error, got nil")
	}
}

func TestValidate_StorageNeedsPath(t *testing.T) {
	cfg := Default()
	cfg.Storage.Enabled = true
	cfg.Storage.Path = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate expected error for enabled storage without path, got nil")
	}
}
