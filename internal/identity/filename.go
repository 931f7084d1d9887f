package identity

import (
	"regexp"
	"strings"
)

// filenameRule pairs a compiled stem pattern with an extraction function.
// Rules are evaluated in order by [ParseFilename]; first rule whose date
// survives calendar validation wins.
type filenameRule struct {
	name    string
	pattern *regexp.Regexp
	extract func(m []string) (prefix, date string)
}

var filenameRules = []filenameRule{
	// <name-prefix>20250428
	{"stem-compact-date",
		regexp.MustCompile(`^(.*?)[\s._\-]*(\d{4})(\d{2})(\d{2})$`),
		func(m []string) (string, string) {
			return m[1], ComposeDate(atoi(m[2]), atoi(m[3]), atoi(m[4]))
		}},
	// <name-prefix>2025-04-28 / 2025.04.28 or day-first 28.04.2025; the
	// first numeric group exceeding 1900 marks it as the year.
	{"stem-separated-date",
		regexp.MustCompile(`^(.*?)[\s._\-]*(\d{1,4})([/\-.])(\d{1,2})[/\-.](\d{1,4})$`),
		func(m []string) (string, string) {
			a, b, c := atoi(m[2]), atoi(m[4]), atoi(m[5])
			if a > 1900 {
				return m[1], ComposeDate(a, b, c)
			}
			return m[1], ComposeDayFirst(a, b, c)
		}},
}

var (
	reStemNoise  = regexp.MustCompile(`[\d_\-.]+`)
	reLatinWord  = regexp.MustCompile(`[A-Za-z]+`)
	reLeadingHan = regexp.MustCompile(`^\p{Han}{2,4}`)
)

// ParseFilename parses a filename stem (extension already removed) into
// identity parts. Structured name+date rules are tried first; without a
// structured match the leading ideographic run becomes the name and the date
// stays unset. Either return value may be empty — the metadata strategy
// backfills whatever is missing.
func ParseFilename(stem string) (name, date string) {
	for _, r := range filenameRules {
		m := r.pattern.FindStringSubmatch(stem)
		if m == nil {
			continue
		}
		prefix, d := r.extract(m)
		if d == "" {
			continue
		}
		return nameFromStem(prefix), d
	}
	return reLeadingHan.FindString(stem), ""
}

// nameFromStem recovers a name from the non-date part of a stem: digits and
// separator runs collapse to spaces, then the usual priority applies —
// ideographic run first, then Latin words joined by single spaces.
func nameFromStem(prefix string) string {
	cleaned := strings.TrimSpace(reStemNoise.ReplaceAllString(prefix, " "))
	if n := LongestHanRun(cleaned); n != "" {
		return n
	}
	return strings.Join(reLatinWord.FindAllString(cleaned, -1), " ")
}
