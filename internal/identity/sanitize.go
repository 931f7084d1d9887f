package identity

import "strings"

// Characters that are illegal in filenames on common platforms.
var illegalChars = strings.NewReplacer(
	`\`, "", `/`, "", `:`, "", `*`, "", `?`, "", `"`, "", `<`, "", `>`, "", `|`, "",
)

// SanitizeName strips filesystem-illegal characters and trims surrounding
// whitespace. An empty result is returned as-is; callers decide whether
// empty is an error. Idempotent.
func SanitizeName(raw string) string {
	return strings.TrimSpace(illegalChars.Replace(raw))
}
