package identity

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// canonical layout for the internal date token.
const canonicalLayout = "20060102"

// normalizeRule pairs an anchored pattern with the time layout used to parse
// the matched text. Rules are evaluated in order by [NormalizeDate]; the
// first rule whose pattern matches and whose text parses as a real calendar
// date wins.
type normalizeRule struct {
	pattern *regexp.Regexp
	layout  string
}

var normalizeRules = []normalizeRule{
	{regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`), "2006/01/02"},
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), "2006-01-02"},
	{regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}$`), "2006.01.02"},
	{regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`), "01/02/2006"},
	{regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`), "01-02-2006"},
	{regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`), "01.02.2006"},
	{regexp.MustCompile(`^\d{8}$`), "20060102"},
}

// NormalizeDate canonicalizes a free-form date string to YYYYMMDD. A rule
// that matches syntactically but fails calendar validation (month 13,
// Feb 30) is skipped in favor of the next rule. When nothing matches, the
// current date is returned; callers always get a usable token, never an
// error.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	for _, r := range normalizeRules {
		if !r.pattern.MatchString(s) {
			continue
		}
		t, err := time.Parse(r.layout, s)
		if err != nil {
			continue
		}
		return t.Format(canonicalLayout)
	}
	return time.Now().Format(canonicalLayout)
}

// IsCanonicalDate reports whether s is a calendar-valid YYYYMMDD token.
func IsCanonicalDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	t, err := time.Parse(canonicalLayout, s)
	return err == nil && t.Format(canonicalLayout) == s
}

// ComposeDate builds a canonical token from numeric components. Two-digit
// years are mapped into 2000-2099. Returns "" when the components do not
// form a real calendar date, so the caller can try its next candidate.
func ComposeDate(year, month, day int) string {
	if year < 100 {
		year += 2000
	}
	if !validDate(year, month, day) {
		return ""
	}
	return fmt.Sprintf("%04d%02d%02d", year, month, day)
}

// ComposeDayFirst resolves an ambiguous a/b numeric pair against a known
// year. Range checks (day <= 31, month <= 12) disambiguate; when both
// orderings are plausible, day/month/year is preferred, then month/day/year
// is tried. Returns "" when neither ordering is calendar-valid.
func ComposeDayFirst(a, b, year int) string {
	if a <= 31 && b <= 12 {
		if s := ComposeDate(year, b, a); s != "" {
			return s
		}
	}
	if s := ComposeDate(year, a, b); s != "" {
		return s
	}
	return ""
}

// validDate checks y/m/d against real calendar rules via round-trip through
// time.Date (which normalizes overflow, e.g. Feb 30 -> Mar 2).
func validDate(y, m, d int) bool {
	if y < 1 || m < 1 || m > 12 || d < 1 || d > 31 {
		return false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return t.Year() == y && int(t.Month()) == m && t.Day() == d
}
