// Package requirements converts vendor-authored hardware requirement markup
// into structured records. The source blurbs use a narrow HTML sub-dialect
// (line breaks, list items, bold labels); everything here is best-effort
// regex stripping that tolerates malformed input and never fails.
package requirements

import (
	"html"
	"regexp"
	"strings"
)

var (
	brTagRE      = regexp.MustCompile(`(?i)<br\s*/?>`)
	liCloseRE    = regexp.MustCompile(`(?i)</li\s*>`)
	strongRE     = regexp.MustCompile(`(?i)<strong>\s*([^<]+?)\s*</strong>`)
	anyTagRE     = regexp.MustCompile(`(?s)<[^>]+>`)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// StripTags reduces a requirements markup fragment to cleaned text lines.
// Break and list-item-end tags become newlines, bold wrapping around inline
// labels is unwrapped, remaining tags are dropped, entities are decoded,
// whitespace runs collapse to one space and empty lines are discarded.
func StripTags(markup string) []string {
	if markup == "" {
		return nil
	}
	s := brTagRE.ReplaceAllString(markup, "\n")
	s = liCloseRE.ReplaceAllString(s, "\n")
	s = strongRE.ReplaceAllString(s, "$1")
	s = anyTagRE.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(whitespaceRE.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
