package identity

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

// --- Name extraction from free text ---

// nameRule pairs a labeled-field pattern with a name. Rules are evaluated in
// order by [NameFromText]; labeled fields outrank bare character runs because
// OCR text routinely contains unrelated ideographs (clinic names, device
// labels) around the patient line.
type nameRule struct {
	name    string
	pattern *regexp.Regexp
}

var nameLabelRules = []nameRule{
	{"cjk-name-label", regexp.MustCompile(`姓名[:：]\s*(\p{Han}+)`)},
	{"cjk-alt-label", regexp.MustCompile(`名字[:：]\s*(\p{Han}+)`)},
	{"cjk-patient-label", regexp.MustCompile(`患者[:：]\s*(\p{Han}+)`)},
	{"latin-name-label", regexp.MustCompile(`(?i)name[:：]\s*([A-Za-z][A-Za-z ]*)`)},
	{"latin-patient-label", regexp.MustCompile(`(?i)patient[:：]\s*([A-Za-z][A-Za-z ]*)`)},
}

var (
	reHanRun        = regexp.MustCompile(`\p{Han}{2,4}`)
	reLatinFullName = regexp.MustCompile(`[A-Z][a-z]+\s+[A-Z][a-z]+`)
	reNameNoise     = regexp.MustCompile(`[^\p{Han}A-Za-z\s]`)
)

// cleanNameCandidate strips everything that is neither ideographic, Latin,
// nor whitespace, then trims. Mirrors what the rename step will accept.
func cleanNameCandidate(s string) string {
	return strings.TrimSpace(reNameNoise.ReplaceAllString(s, ""))
}

// NameFromText scans free text (an OCR transcription or a model answer) for
// a patient name. Labeled fields win first; then the longest 2-4 character
// ideographic run; then a Firstname Lastname shaped Latin pair. Returns ""
// when nothing usable is found.
func NameFromText(text string) string {
	for _, r := range nameLabelRules {
		for _, m := range r.pattern.FindAllStringSubmatch(text, -1) {
			n := cleanNameCandidate(m[1])
			if utf8.RuneCountInString(n) >= 2 {
				return n
			}
		}
	}
	if n := LongestHanRun(text); n != "" {
		return n
	}
	return reLatinFullName.FindString(text)
}

// LongestHanRun returns the longest 2-4 character ideographic run in text,
// or "" when none exists. Earlier runs win ties, matching scan order.
func LongestHanRun(text string) string {
	best := ""
	for _, m := range reHanRun.FindAllString(text, -1) {
		if utf8.RuneCountInString(m) > utf8.RuneCountInString(best) {
			best = m
		}
	}
	return best
}

// --- Date extraction from free text ---

// textDateRule pairs a pattern with a handler that turns its submatches into
// a canonical date, or "" to reject the candidate. Rules are evaluated in
// order by [DateFromText]; within one rule every match in the text is tried
// before moving on, because OCR output often contains several number groups
// and only one of them is a real date.
type textDateRule struct {
	name    string
	pattern *regexp.Regexp
	handle  func(m []string) string
}

var textDateRules = []textDateRule{
	{"ymd-separated", regexp.MustCompile(`(\d{4})[/\-.](\d{2})[/\-.](\d{2})`),
		func(m []string) string { return ComposeDate(atoi(m[1]), atoi(m[2]), atoi(m[3])) }},
	{"dmy-separated", regexp.MustCompile(`(\d{2})[/\-.](\d{2})[/\-.](\d{4})`),
		func(m []string) string { return ComposeDayFirst(atoi(m[1]), atoi(m[2]), atoi(m[3])) }},
	{"ymd-compact", regexp.MustCompile(`(\d{4})(\d{2})(\d{2})`),
		func(m []string) string { return ComposeDate(atoi(m[1]), atoi(m[2]), atoi(m[3])) }},
	{"dmy-short-year", regexp.MustCompile(`(\d{2})[/\-.](\d{2})[/\-.](\d{2})`),
		func(m []string) string { return ComposeDayFirst(atoi(m[1]), atoi(m[2]), atoi(m[3])) }},
	{"cjk-date-label", regexp.MustCompile(`日期[:：]\s*(\d{4}[/\-.]\d{1,2}[/\-.]\d{1,2})`),
		func(m []string) string { return splitAndCompose(m[1]) }},
	{"latin-date-label", regexp.MustCompile(`(?i)date[:：]\s*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{4})`),
		func(m []string) string { return splitAndCompose(m[1]) }},
	{"ymd-six-digit", regexp.MustCompile(`\b(\d{6})\b`),
		func(m []string) string {
			s := m[1]
			return ComposeDate(atoi(s[:2]), atoi(s[2:4]), atoi(s[4:]))
		}},
}

var reDateSep = regexp.MustCompile(`[/\-.]`)

// splitAndCompose handles a labeled date body with either year-first or
// year-last component order, detected by which group exceeds 1900.
func splitAndCompose(body string) string {
	parts := reDateSep.Split(body, -1)
	if len(parts) != 3 {
		return ""
	}
	a, b, c := atoi(parts[0]), atoi(parts[1]), atoi(parts[2])
	if a > 1900 {
		return ComposeDate(a, b, c)
	}
	return ComposeDayFirst(a, b, c)
}

// DateFromText scans free text for the first calendar-valid date and returns
// it canonicalized, or "" when no candidate survives validation.
func DateFromText(text string) string {
	for _, r := range textDateRules {
		for _, m := range r.pattern.FindAllStringSubmatch(text, -1) {
			if d := r.handle(m); d != "" {
				return d
			}
		}
	}
	return ""
}
