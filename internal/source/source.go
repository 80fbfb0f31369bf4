package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultBaseURL resolves relative links when nothing better is known.
	DefaultBaseURL = "https://ads.vk.com"

	// DefaultSourceURL is the live listing page fetched when the default
	// input file has not been saved yet.
	DefaultSourceURL = "https://ads.vk.com/cases"

	// DefaultInputPath is where a saved copy of the listing page is expected.
	DefaultInputPath = "data/cases.html"
)

// Document is a loaded listing page.
type Document struct {
	Body string

	// SourceURL is the URL the body was fetched from, or empty when it was
	// read from a local file.
	SourceURL string

	// InputPath is the file the body was read from, or empty when fetched.
	InputPath string
}

// HTMLFetcher is implemented by Fetcher.
type HTMLFetcher interface {
	FetchHTML(ctx context.Context, pageURL string) (string, error)
}

// Loader chooses between fetching a page and reading a saved copy.
type Loader struct {
	fetcher HTMLFetcher
}

// NewLoader creates a Loader that fetches remote pages with fetcher.
func NewLoader(fetcher HTMLFetcher) *Loader {
	return &Loader{fetcher: fetcher}
}

// Load returns the listing page to extract from.
//
// A non-empty sourceURL is always fetched. Otherwise inputPath is read; if it
// does not exist and is the default input path, DefaultSourceURL is fetched
// instead. A missing custom input file is returned as an error wrapping
// fs.ErrNotExist.
func (l *Loader) Load(ctx context.Context, inputPath, sourceURL string) (*Document, error) {
	if sourceURL = strings.TrimSpace(sourceURL); sourceURL != "" {
		return l.fetch(ctx, sourceURL)
	}

	if inputPath == "" {
		inputPath = DefaultInputPath
	}

	data, err := os.ReadFile(inputPath)
	if err == nil {
		slog.Info("loaded saved page", "path", inputPath, "bytes", len(data))
		return &Document{Body: string(data), InputPath: inputPath}, nil
	}

	if errors.Is(err, fs.ErrNotExist) && isDefaultInput(inputPath) {
		slog.Info("default input file missing, fetching live page",
			"path", inputPath,
			"url", DefaultSourceURL,
		)
		return l.fetch(ctx, DefaultSourceURL)
	}

	return nil, fmt.Errorf("reading input file %q: %w", inputPath, err)
}

func (l *Loader) fetch(ctx context.Context, pageURL string) (*Document, error) {
	body, err := l.fetcher.FetchHTML(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return &Document{Body: body, SourceURL: pageURL}, nil
}

func isDefaultInput(path string) bool {
	return filepath.Clean(path) == filepath.Clean(DefaultInputPath)
}

// DeriveBaseURL returns the scheme and host of raw as "scheme://host". It
// reports false when raw is not an absolute URL.
func DeriveBaseURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return u.Scheme + "://" + u.Host, true
}

// ResolveBaseURL picks the base URL for link resolution: the explicit value
// when set, then the origin of sourceURL, then DefaultBaseURL.
func ResolveBaseURL(explicit, sourceURL string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	if base, ok := DeriveBaseURL(sourceURL); ok {
		return base
	}
	return DefaultBaseURL
}
