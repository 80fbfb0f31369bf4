package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateNoiseReplacer strips spacing artifacts before date grammars run. Spaces
// are kept as separators so "5 сентября" still reads as two tokens.
var dateNoiseReplacer = strings.NewReplacer(
	"\u00a0", " ",
	"\u2009", " ",
	"\u202f", " ",
	"\u00ad", "",
)

// dateGrammar is one recognized date syntax. The first grammar whose pattern
// matches decides the outcome; convert never hands off to a later grammar.
type dateGrammar struct {
	name    string
	pattern *regexp.Regexp
	convert func(m []string) (string, bool)
}

var dateGrammars = []dateGrammar{
	{
		name:    "iso",
		pattern: regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`),
		convert: func(m []string) (string, bool) {
			return m[1] + "-" + m[2] + "-" + m[3], true
		},
	},
	{
		name:    "dotted",
		pattern: regexp.MustCompile(`^(\d{1,2})[./](\d{1,2})[./](\d{4})`),
		convert: func(m []string) (string, bool) {
			return calendarDate(atoi(m[3]), atoi(m[2]), atoi(m[1]))
		},
	},
	{
		name:    "russian",
		pattern: regexp.MustCompile(`(?i)^(\d{1,2})\s+(\p{Cyrillic}+\.?)\s+(\d{4})(?:\s*(?:года|г\.?))?(?:[^\p{L}\p{N}]|$)`),
		convert: func(m []string) (string, bool) {
			month, ok := russianMonths[normalizeMonthWord(m[2])]
			if !ok {
				return "", false
			}
			return calendarDate(atoi(m[3]), month, atoi(m[1]))
		},
	},
}

// russianMonths maps every known full, declined and abbreviated Russian month
// form to its number. Keys are lowercase with "ё" folded to "е".
var russianMonths = buildMonthTable([12][]string{
	{"январь", "января", "январе", "янв"},
	{"февраль", "февраля", "феврале", "фев", "февр"},
	{"март", "марта", "марте", "мар"},
	{"апрель", "апреля", "апреле", "апр"},
	{"май", "мая", "мае"},
	{"июнь", "июня", "июне", "июн"},
	{"июль", "июля", "июле", "июл"},
	{"август", "августа", "августе", "авг"},
	{"сентябрь", "сентября", "сентябре", "сен", "сент"},
	{"октябрь", "октября", "октябре", "окт"},
	{"ноябрь", "ноября", "ноябре", "ноя", "нояб"},
	{"декабрь", "декабря", "декабре", "дек"},
})

func buildMonthTable(forms [12][]string) map[string]int {
	table := make(map[string]int)
	for i, words := range forms {
		for _, w := range words {
			table[w] = i + 1
		}
	}
	return table
}

// NormalizeDate converts a raw date string to the canonical YYYY-MM-DD form.
//
// Three grammars are tried in order: an ISO prefix (re-emitted verbatim, no
// calendar check), a dotted or slashed day.month.year, and a Russian textual
// date such as "5 сентября 2024" or "12 сент. 2024 г.". A grammar that matches
// but names an impossible date yields false without trying the next grammar.
func NormalizeDate(raw string) (string, bool) {
	value := strings.TrimSpace(dateNoiseReplacer.Replace(raw))
	if value == "" {
		return "", false
	}

	for _, g := range dateGrammars {
		m := g.pattern.FindStringSubmatch(value)
		if m == nil {
			continue
		}
		return g.convert(m)
	}
	return "", false
}

// normalizeMonthWord lowercases a month token, folds "ё" to "е" and drops a
// trailing abbreviation period.
func normalizeMonthWord(w string) string {
	w = strings.ToLower(w)
	w = strings.ReplaceAll(w, "ё", "е")
	return strings.TrimSuffix(w, ".")
}

// calendarDate formats year, month and day as YYYY-MM-DD if they name a real
// calendar day.
func calendarDate(year, month, day int) (string, bool) {
	if year < 1 || month < 1 || month > 12 || day < 1 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false
	}
	return t.Format(time.DateOnly), true
}

// atoi parses a run of ASCII digits already validated by a grammar pattern.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
