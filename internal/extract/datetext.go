package extract

import (
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// dateCandidates yields raw strings that may hold the card's publication
// date, most reliable first: each <time> element's datetime attribute and
// then its text, followed by the text of any element whose class or test id
// mentions "date". Each call rescans the card.
func dateCandidates(card *goquery.Selection) iter.Seq[string] {
	return func(yield func(string) bool) {
		stopped := false
		card.Find("time").EachWithBreak(func(_ int, t *goquery.Selection) bool {
			if v := strings.TrimSpace(t.AttrOr("datetime", "")); v != "" {
				if !yield(v) {
					stopped = true
					return false
				}
			}
			if text := inlineText(t); text != "" {
				if !yield(text) {
					stopped = true
					return false
				}
			}
			return true
		})
		if stopped {
			return
		}

		card.Find("*").EachWithBreak(func(_ int, el *goquery.Selection) bool {
			if !mentionsDate(el) {
				return true
			}
			if text := inlineText(el); text != "" {
				return yield(text)
			}
			return true
		})
	}
}

func mentionsDate(el *goquery.Selection) bool {
	class := strings.ToLower(el.AttrOr("class", ""))
	testID := strings.ToLower(el.AttrOr("data-testid", ""))
	return strings.Contains(class, "date") || strings.Contains(testID, "date")
}

// extractDate returns the first date candidate of card that normalizes.
func extractDate(card *goquery.Selection) (string, bool) {
	for raw := range dateCandidates(card) {
		if d, ok := NormalizeDate(raw); ok {
			return d, true
		}
	}
	return "", false
}
