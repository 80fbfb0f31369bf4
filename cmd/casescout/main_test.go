package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hoanghai1803/casescout/internal/models"
)

const testListing = `<!doctype html>
<html><body>
<div data-testid="case-card">
	<a href="/cases/alpha"><h3>Альфа</h3></a>
	<time datetime="2024-09-21">21 сентября 2024</time>
</div>
<div data-testid="case-card">
	<a href="/cases/beta"><h3>Beta</h3></a>
	<span class="card-date">03.02.2023</span>
</div>
</body></html>`

// runCLI executes the root command with args and returns what it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func setupWorkspace(t *testing.T) (dir, input string) {
	t.Helper()
	t.Setenv("CASESCOUT_SOURCE_URL", "")
	t.Setenv("CASESCOUT_BASE_URL", "")
	t.Setenv("CASESCOUT_STORAGE_PATH", "")

	dir = t.TempDir()
	input = filepath.Join(dir, "cases.html")
	if err := os.WriteFile(input, []byte(testListing), 0o644); err != nil {
		t.Fatalf("writing input: %v", err)
	}
	return dir, input
}

func TestExtractCommand_WritesAndEchoes(t *testing.T) {
	dir, input := setupWorkspace(t)
	output := filepath.Join(dir, "out", "cases.json")

	stdout, err := runCLI(t,
		"--config", filepath.Join(dir, "config.toml"),
		"extract",
		"--input", input,
		"--base-url", "https://example.com",
		"--output", output,
	)
	if err != nil {
		t.Fatalf("extract error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}

	var cases []models.Case
	if err := json.Unmarshal(data, &cases); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("got %d cases, want 2", len(cases))
	}
	if cases[0].URL != "https://example.com/cases/alpha" || cases[0].Title != "Альфа" {
		t.Errorf("cases[0] = %+v", cases[0])
	}
	if cases[1].PublishedAt == nil || *cases[1].PublishedAt != "2023-02-03" {
		t.Errorf("cases[1].PublishedAt = %v, want 2023-02-03", cases[1].PublishedAt)
	}

	if !strings.Contains(stdout, "Альфа") {
		t.Errorf("stdout does not echo results: %q", stdout)
	}
}

func TestExtractCommand_QuietYAML(t *testing.T) {
	dir, input := setupWorkspace(t)
	output := filepath.Join(dir, "cases.yaml")

	stdout, err := runCLI(t,
		"--config", filepath.Join(dir, "config.toml"),
		"extract",
		"--input", input,
		"--output", output,
		"--format", "yaml",
		"--quiet",
	)
	if err != nil {
		t.Fatalf("extract error: %v", err)
	}
	if strings.Contains(stdout, "Альфа") {
		t.Errorf("quiet run printed results: %q", stdout)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(data), "url: https://ads.vk.com/cases/alpha") {
		t.Errorf("yaml output = %q", string(data))
	}
}

func TestExtractCommand_MissingCustomInput(t *testing.T) {
	dir, _ := setupWorkspace(t)

	_, err := runCLI(t,
		"--config", filepath.Join(dir, "config.toml"),
		"extract",
		"--input", filepath.Join(dir, "missing.html"),
		"--output", filepath.Join(dir, "cases.json"),
	)
	if err == nil {
		t.Fatal("extract with missing custom input succeeded, want error")
	}
}

func TestExtractCommand_InvalidFormat(t *testing.T) {
	dir, input := setupWorkspace(t)

	_, err := runCLI(t,
		"--config", filepath.Join(dir, "config.toml"),
		"extract",
		"--input", input,
		"--format", "xml",
	)
	if err == nil {
		t.Fatal("extract with unknown format succeeded, want error")
	}
}

func TestRunsCommand_AfterStoredExtract(t *testing.T) {
	dir, input := setupWorkspace(t)
	t.Setenv("CASESCOUT_STORAGE_PATH", filepath.Join(dir, "archive.db"))
	config := filepath.Join(dir, "config.toml")

	if _, err := runCLI(t,
		"--config", config,
		"extract",
		"--input", input,
		"--output", filepath.Join(dir, "cases.json"),
		"--quiet",
		"--store",
	); err != nil {
		t.Fatalf("extract error: %v", err)
	}

	stdout, err := runCLI(t, "--config", config, "runs", "--limit", "5")
	if err != nil {
		t.Fatalf("runs error: %v", err)
	}
	if !strings.Contains(stdout, "2 cases (2 new)") {
		t.Errorf("runs output = %q, want the stored run", stdout)
	}
}

func TestPrintRuns(t *testing.T) {
	var buf bytes.Buffer
	printRuns(&buf, nil)
	if got := buf.String(); got != "(no runs)\n" {
		t.Errorf("printRuns(nil) = %q", got)
	}

	buf.Reset()
	printRuns(&buf, []models.Run{{
		RunID:     "abc",
		InputPath: "data/cases.html",
		Error:     "boom",
		CreatedAt: time.Date(2024, 9, 21, 10, 0, 0, 0, time.UTC),
	}})
	want := "- 2024-09-21 10:00:00  abc  0 cases (0 new)  data/cases.html\n    error: boom\n"
	if got := buf.String(); got != want {
		t.Errorf("printRuns = %q, want %q", got, want)
	}
}
