// Package postprocess enforces the style rules that the rewrite prompt alone cannot guarantee.
package postprocess

import (
	"regexp"
	"strings"
)

type substitution struct {
	pattern     *regexp.Regexp
	replacement string
}

var (
	dashReplacer = strings.NewReplacer("—", "-", "–", "-")

	wordSubstitutions = []substitution{
		{pattern: regexp.MustCompile(`(?i)\bmeanwhile\b`), replacement: "At the same time"},
		{pattern: regexp.MustCompile(`(?i)\bflashpoint\b`), replacement: "critical point"},
	}
)

const (
	forbiddenPhrase   = "which makes it"
	phraseReplacement = "so it's"
)

// Apply rewrites em and en dashes to hyphens, replaces the standalone words
// "Meanwhile" and "flashpoint" in any case, and replaces "which makes it".
// The patterns do not overlap, so the order of the substitutions does not matter.
func Apply(text string) string {
	text = dashReplacer.Replace(text)
	for _, s := range wordSubstitutions {
		text = s.pattern.ReplaceAllLiteralString(text, s.replacement)
	}
	return strings.ReplaceAll(text, forbiddenPhrase, phraseReplacement)
}
