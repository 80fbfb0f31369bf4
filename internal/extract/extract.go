// Package extract recovers case-study listings from a marketing listing page.
//
// The page markup is not stable, so every step runs a cascade of structural
// heuristics with first-success-wins semantics: cards are located with the
// first selector that matches, titles come from the first strategy that
// yields a non-generic string, and dates come from the first candidate text
// that one of the date grammars accepts. Missing links, titles or dates are
// never errors; the affected card or field is simply skipped.
//
// All lookup tables in this package are built once at init and never
// mutated, so Extract is safe to call from multiple goroutines.
package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/hoanghai1803/casescout/internal/models"
)

// ErrInvalidBaseURL is returned when the base URL is not absolute.
var ErrInvalidBaseURL = errors.New("base URL must be absolute with scheme and host")

// Extract parses document as HTML and returns its case records in document
// order, deduplicated by absolute URL. Relative links are resolved against
// baseURL.
func Extract(document, baseURL string) ([]models.Case, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return ExtractDocument(doc, baseURL)
}

// ExtractDocument is Extract for an already parsed document.
func ExtractDocument(doc *goquery.Document, baseURL string) ([]models.Case, error) {
	base, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	cases := []models.Case{}
	seen := make(map[string]struct{})

	for i, card := range LocateCards(doc.Selection) {
		link := resolveLink(card)
		if link == nil {
			slog.Debug("skipping card without link", "card", i)
			continue
		}

		title, ok := recoverTitle(card, link)
		if !ok {
			slog.Debug("skipping card without title", "card", i)
			continue
		}

		absURL, ok := resolveURL(base, link.AttrOr("href", ""))
		if !ok {
			continue
		}
		if _, dup := seen[absURL]; dup {
			continue
		}

		date, _ := extractDate(card)
		cases = append(cases, models.Case{
			Title:       title,
			URL:         absURL,
			PublishedAt: models.DatePtr(date),
		})
		seen[absURL] = struct{}{}
	}

	return cases, nil
}

// ParseBaseURL parses raw and checks that it has both a scheme and a host.
func ParseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidBaseURL, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, raw)
	}
	return u, nil
}

// resolveURL resolves href against base using standard reference resolution.
func resolveURL(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}
