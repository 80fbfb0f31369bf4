package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/hoanghai1803/casescout/internal/models"
	"github.com/mmcdole/gofeed"
)

// IsFeed reports whether body is an RSS, Atom or JSON feed rather than an
// HTML page.
func IsFeed(body string) bool {
	return gofeed.DetectFeedType(strings.NewReader(body)) != gofeed.FeedTypeUnknown
}

// ExtractFeed maps the items of a feed document to case records. Titles pass
// through the same normalization and blocklist as HTML cards, links are
// resolved against baseURL, and records keep feed order with duplicate URLs
// dropped.
func ExtractFeed(body, baseURL string) ([]models.Case, error) {
	base, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	cases := []models.Case{}
	seen := make(map[string]struct{})

	for _, item := range feed.Items {
		title, ok := acceptTitle(item.Title)
		if !ok {
			continue
		}
		absURL, ok := resolveURL(base, item.Link)
		if !ok {
			continue
		}
		if _, dup := seen[absURL]; dup {
			continue
		}

		cases = append(cases, models.Case{
			Title:       title,
			URL:         absURL,
			PublishedAt: models.DatePtr(feedItemDate(item)),
		})
		seen[absURL] = struct{}{}
	}

	return cases, nil
}

// feedItemDate prefers the parsed publish or update time and falls back to
// running the raw strings through NormalizeDate.
func feedItemDate(item *gofeed.Item) string {
	for _, t := range []*time.Time{item.PublishedParsed, item.UpdatedParsed} {
		if t != nil {
			return t.Format(time.DateOnly)
		}
	}
	for _, raw := range []string{item.Published, item.Updated} {
		if d, ok := NormalizeDate(raw); ok {
			return d
		}
	}
	return ""
}
