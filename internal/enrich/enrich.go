// Package enrich backfills missing publication dates by reading each case
// page's article metadata.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/hoanghai1803/casescout/internal/models"
	"github.com/hoanghai1803/casescout/internal/source"
	"golang.org/x/sync/errgroup"
)

const (
	defaultMaxConcurrent = 4
	defaultRateLimit     = 1 * time.Second
)

// Options configures an Enricher. Zero values fall back to defaults.
type Options struct {
	MaxConcurrent int

	// RateLimit is the minimum delay between two requests to the same host.
	RateLimit time.Duration
}

// publishedFunc returns the publication time of the page at pageURL, or nil
// when the page does not expose one.
type publishedFunc func(ctx context.Context, pageURL string) (*time.Time, error)

// Enricher fills in missing published_at values with bounded concurrency and
// per-host rate limiting.
type Enricher struct {
	published     publishedFunc
	maxConcurrent int
	rateLimit     time.Duration

	mu          sync.Mutex           // protects lastRequest
	lastRequest map[string]time.Time // per-host last request time
}

// New creates an Enricher that downloads case pages with fetcher and reads
// their published time with go-readability.
func New(fetcher source.HTMLFetcher, opts Options) *Enricher {
	return newEnricher(readabilityPublished(fetcher), opts)
}

func newEnricher(published publishedFunc, opts Options) *Enricher {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	if opts.RateLimit < 0 {
		opts.RateLimit = 0
	} else if opts.RateLimit == 0 {
		opts.RateLimit = defaultRateLimit
	}
	return &Enricher{
		published:     published,
		maxConcurrent: opts.MaxConcurrent,
		rateLimit:     opts.RateLimit,
		lastRequest:   make(map[string]time.Time),
	}
}

// FillMissingDates sets PublishedAt on every case that lacks one and whose
// page exposes a published time. Cases are updated in place; order and titles
// are never changed. Per-page failures are logged and skipped. It returns the
// number of cases that gained a date.
func (e *Enricher) FillMissingDates(ctx context.Context, cases []models.Case) (int, error) {
	var (
		filled int
		mu     sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrent)

	for i := range cases {
		if cases[i].PublishedAt != nil {
			continue
		}
		g.Go(func() error {
			pageURL := cases[i].URL
			if err := e.waitForRateLimit(gctx, hostOf(pageURL)); err != nil {
				return nil
			}

			t, err := e.published(gctx, pageURL)
			if err != nil {
				slog.Warn("failed to read case page", "url", pageURL, "error", err)
				return nil
			}
			if t == nil {
				slog.Debug("case page has no published time", "url", pageURL)
				return nil
			}

			cases[i].PublishedAt = models.DatePtr(t.Format(time.DateOnly))
			mu.Lock()
			filled++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return filled, fmt.Errorf("enriching cases: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return filled, fmt.Errorf("enriching cases: %w", err)
	}

	slog.Info("enriched case dates", "filled", filled)
	return filled, nil
}

// waitForRateLimit blocks until at least rateLimit has passed since the last
// request to host, or ctx is done.
func (e *Enricher) waitForRateLimit(ctx context.Context, host string) error {
	e.mu.Lock()
	now := time.Now()
	next := now
	if last, ok := e.lastRequest[host]; ok && last.Add(e.rateLimit).After(now) {
		next = last.Add(e.rateLimit)
	}
	e.lastRequest[host] = next
	e.mu.Unlock()

	delay := next.Sub(now)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// hostOf returns the hostname of rawURL, or rawURL itself when it does not
// parse.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}

func readabilityPublished(fetcher source.HTMLFetcher) publishedFunc {
	return func(ctx context.Context, pageURL string) (*time.Time, error) {
		body, err := fetcher.FetchHTML(ctx, pageURL)
		if err != nil {
			return nil, err
		}

		parsedURL, err := url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("parsing page URL %q: %w", pageURL, err)
		}

		article, err := readability.FromReader(strings.NewReader(body), parsedURL)
		if err != nil {
			return nil, fmt.Errorf("readability extraction: %w", err)
		}
		return article.PublishedTime, nil
	}
}
