package answer

import (
	"regexp"
	"strings"
)

// trailingRules matches "sources" blocks the model sometimes appends despite
// the prompt instruction, from the heading line through end of text. The
// rule set is data so individual patterns stay independently testable.
var trailingRules = []*regexp.Regexp{
	regexp.MustCompile(`(?is)\n+manbalar bo['’` + "`" + `]?yicha:.*\z`),
	regexp.MustCompile(`(?is)\n+manbalar\s*:.*\z`),
}

// Sanitize strips a trailing sources-label section from raw model output and
// trims surrounding whitespace. It is a best-effort safety net: inline
// citations embedded mid-answer are not touched. Text without a recognized
// pattern passes through unchanged apart from trimming.
func Sanitize(raw string) string {
	out := raw
	for _, rule := range trailingRules {
		out = rule.ReplaceAllString(out, "")
	}
	return strings.TrimSpace(out)
}
