package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// titleStrategy produces title candidates for a card in priority order.
type titleStrategy struct {
	name       string
	candidates func(card, link *goquery.Selection) []string
}

// titleSelectors are scoped to the card and tried top to bottom.
var titleSelectors = []string{
	`[data-testid="case-card-title"]`,
	`[itemprop="headline"]`,
	`[itemprop="name"]`,
	`[class*="CaseCard__title"]`,
	`[class*="vkuiHeadline"]`,
	`[class*="title"]`,
	`[class*="Title"]`,
	`h3`,
	`h2`,
	`h1`,
	`h4`,
	`h5`,
	`h6`,
}

// linkTitleAttributes are read from the link element when no selector yields
// a title.
var linkTitleAttributes = []string{"title", "aria-label", "aria-labelledby", "data-title"}

var headingTags = map[string]struct{}{
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
}

var titleStrategies = buildTitleStrategies()

func buildTitleStrategies() []titleStrategy {
	strategies := make([]titleStrategy, 0, len(titleSelectors)+2)
	for _, q := range titleSelectors {
		strategies = append(strategies, titleStrategy{name: q, candidates: selectorTitles(q)})
	}
	return append(strategies,
		titleStrategy{name: "link-attributes", candidates: linkAttributeTitles},
		titleStrategy{name: "heading-scan", candidates: headingScanTitles},
	)
}

// recoverTitle returns the first candidate, across all strategies in order,
// that is non-empty after normalization and not a generic phrase.
func recoverTitle(card, link *goquery.Selection) (string, bool) {
	for _, st := range titleStrategies {
		for _, c := range st.candidates(card, link) {
			if title, ok := acceptTitle(c); ok {
				return title, true
			}
		}
	}
	return "", false
}

func selectorTitles(query string) func(card, link *goquery.Selection) []string {
	return func(card, _ *goquery.Selection) []string {
		var out []string
		card.Find(query).Each(func(_ int, s *goquery.Selection) {
			out = append(out, inlineText(s))
		})
		return out
	}
}

func linkAttributeTitles(_, link *goquery.Selection) []string {
	var out []string
	for _, attr := range linkTitleAttributes {
		v, ok := link.Attr(attr)
		if !ok {
			continue
		}
		if attr == "aria-labelledby" {
			v = labelledByText(link, v)
		}
		out = append(out, v)
	}
	return out
}

// labelledByText resolves a space-separated list of element ids against the
// document containing link and joins their text.
func labelledByText(link *goquery.Selection, ids string) string {
	root := link.Parents().Last()
	if root.Length() == 0 {
		root = link
	}

	var parts []string
	for _, id := range strings.Fields(ids) {
		target := root.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.AttrOr("id", "") == id
		}).First()
		if text := inlineText(target); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func headingScanTitles(card, _ *goquery.Selection) []string {
	var out []string
	card.Find("*").Each(func(_ int, el *goquery.Selection) {
		if !looksLikeHeading(el) || isCallToAction(el, card) {
			return
		}
		out = append(out, inlineText(el))
	})
	return out
}

// looksLikeHeading reports whether el is a heading tag or is marked as a title
// or headline through its class list or test id.
func looksLikeHeading(el *goquery.Selection) bool {
	if _, ok := headingTags[goquery.NodeName(el)]; ok {
		return true
	}
	for _, attr := range []string{"class", "data-testid"} {
		v := strings.ToLower(el.AttrOr(attr, ""))
		if strings.Contains(v, "title") || strings.Contains(v, "headline") {
			return true
		}
	}
	return false
}

// isCallToAction reports whether el is a button, has the button role, or sits
// inside a button below card.
func isCallToAction(el, card *goquery.Selection) bool {
	if goquery.NodeName(el) == "button" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(el.AttrOr("role", "")), "button") {
		return true
	}
	return el.ParentsUntilSelection(card).Filter("button").Length() > 0
}
