package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// invisibleReplacer maps typographic spacing artifacts that CMS editors leave
// in listing markup onto plain spaces, and drops the zero-width ones.
var invisibleReplacer = strings.NewReplacer(
	"\u00a0", " ", // no-break space
	"\u2009", " ", // thin space
	"\u202f", " ", // narrow no-break space
	"\u200b", "", // zero width space
	"\u00ad", "", // soft hyphen
)

// genericTitles are call-to-action labels that are never accepted as a case
// title. Keys are lowercase.
var genericTitles = map[string]struct{}{
	"learn more":       {},
	"read more":        {},
	"read full case":   {},
	"read case":        {},
	"view case":        {},
	"see case":         {},
	"more":             {},
	"details":          {},
	"подробнее":        {},
	"читать":           {},
	"читать далее":     {},
	"читать кейс":      {},
	"читать полностью": {},
	"смотреть кейс":    {},
	"узнать больше":    {},
	"перейти к кейсу":  {},
}

// NormalizeText removes whitespace artifacts from s, composes it to NFC and
// collapses every run of whitespace to a single space.
func NormalizeText(s string) string {
	s = invisibleReplacer.Replace(s)
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// IsGenericTitle reports whether s is a boilerplate call-to-action phrase.
// The comparison is case-insensitive and runs on the normalized text.
func IsGenericTitle(s string) bool {
	_, ok := genericTitles[strings.ToLower(NormalizeText(s))]
	return ok
}

// acceptTitle normalizes a candidate and reports whether it can serve as a
// case title.
func acceptTitle(raw string) (string, bool) {
	title := NormalizeText(raw)
	if title == "" || IsGenericTitle(title) {
		return "", false
	}
	return title, true
}

// inlineText returns the text of every node in s, with each text node trimmed
// and joined by single spaces.
func inlineText(s *goquery.Selection) string {
	var parts []string
	for _, n := range s.Nodes {
		collectText(n, &parts)
	}
	return NormalizeText(strings.Join(parts, " "))
}

func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Template, atom.Noscript:
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
