// Package export serializes extracted case records and writes them out.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hoanghai1803/casescout/internal/models"
	"gopkg.in/yaml.v3"
)

// DefaultOutputPath is where results are written when no path is configured.
const DefaultOutputPath = "data/cases.json"

// Supported output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Encode serializes cases in the given format. JSON is indented with HTML
// escaping disabled so titles keep their characters verbatim; an empty slice
// encodes as [] rather than null.
func Encode(cases []models.Case, format string) (string, error) {
	if cases == nil {
		cases = []models.Case{}
	}

	switch format {
	case "", FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cases); err != nil {
			return "", fmt.Errorf("encoding JSON: %w", err)
		}
		return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
	case FormatYAML:
		data, err := yaml.Marshal(cases)
		if err != nil {
			return "", fmt.Errorf("encoding YAML: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported output format %q", format)
	}
}

// Persist writes payload to path, creating parent directories as needed, and
// also prints it to stdout when echo is true. With an empty path the payload
// is only printed.
func Persist(payload, path string, echo bool, stdout io.Writer) error {
	if path == "" {
		_, err := fmt.Fprintln(stdout, payload)
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		return fmt.Errorf("writing output %q: %w", path, err)
	}

	if echo {
		if _, err := fmt.Fprintln(stdout, payload); err != nil {
			return fmt.Errorf("echoing output: %w", err)
		}
	}
	return nil
}
