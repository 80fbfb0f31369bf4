package extract

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cardSelector is one structural query for case cards. The list below runs
// from the most specific markup to the loosest fallback.
type cardSelector struct {
	name  string
	query string
}

var cardSelectors = []cardSelector{
	{name: "test-id", query: `[data-testid="case-card"]`},
	{name: "class", query: `.CaseCard`},
	{name: "case-link", query: `a[href*="/cases/"]`},
}

// LocateCards returns the case card elements under root in document order.
// Only the first selector that matches anything is used; results from
// different selectors are never merged. It returns nil when nothing matches.
func LocateCards(root *goquery.Selection) []*goquery.Selection {
	for _, cs := range cardSelectors {
		found := root.Find(cs.query)
		if found.Length() == 0 {
			continue
		}

		slog.Debug("located case cards", "selector", cs.name, "count", found.Length())

		cards := make([]*goquery.Selection, 0, found.Length())
		found.Each(func(_ int, s *goquery.Selection) {
			cards = append(cards, s)
		})
		return cards
	}
	return nil
}

// resolveLink returns the link element for a card: the card itself when it is
// an anchor with a usable href, otherwise its first descendant anchor that has
// one. It returns nil when the card carries no usable link.
func resolveLink(card *goquery.Selection) *goquery.Selection {
	if goquery.NodeName(card) == "a" && usableHref(card) {
		return card
	}

	var link *goquery.Selection
	card.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if usableHref(a) {
			link = a
			return false
		}
		return true
	})
	return link
}

// usableHref reports whether s has an href that points somewhere: not empty,
// not a bare in-page fragment and not a javascript: pseudo-link.
func usableHref(s *goquery.Selection) bool {
	href, ok := s.Attr("href")
	if !ok {
		return false
	}
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	return !strings.HasPrefix(strings.ToLower(href), "javascript:")
}
