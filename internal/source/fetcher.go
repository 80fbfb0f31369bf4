// Package source loads the listing page that case records are extracted
// from, either over HTTP or from a saved file.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

const (
	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent is sent with every request unless configured otherwise.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	maxBodyBytes = 16 << 20
)

// ErrUnexpectedStatus is returned when the server answers with a non-2xx code.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// FetcherOptions configures a Fetcher. Zero values fall back to defaults.
type FetcherOptions struct {
	Timeout   time.Duration
	UserAgent string
	Transport http.RoundTripper
}

// Fetcher retrieves listing pages over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher whose client applies the configured timeout
// and injects browser-like headers on every request.
func NewFetcher(opts FetcherOptions) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &headerTransport{
				base:      opts.Transport,
				userAgent: opts.UserAgent,
			},
		},
	}
}

// Client returns the configured HTTP client.
func (f *Fetcher) Client() *http.Client {
	return f.client
}

// headerTransport wraps an http.RoundTripper to set browser-like request
// headers, since some marketing sites reject default Go clients.
type headerTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	}
	if req.Header.Get("Accept-Language") == "" {
		req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7")
	}
	return t.base.RoundTrip(req)
}

// FetchHTML downloads pageURL and returns its body decoded to UTF-8 using the
// charset declared by the response or sniffed from the content.
func (f *Fetcher) FetchHTML(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request for %q: %w", pageURL, err)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %q: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetching %q: %w: %d", pageURL, ErrUnexpectedStatus, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading body from %q: %w", pageURL, err)
	}

	enc, encName, _ := charset.DetermineEncoding(raw, resp.Header.Get("Content-Type"))
	data, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding %s body from %q: %w", encName, pageURL, err)
	}

	slog.Info("fetched page",
		"url", pageURL,
		"status", resp.StatusCode,
		"bytes", len(data),
		"charset", encName,
		"duration", time.Since(start).String(),
	)
	return string(data), nil
}
