package requirements

import (
	"regexp"
	"strings"
)

// labelRE matches "label: value" lines. The label may not exceed 80
// characters and may not itself contain a colon.
var labelRE = regexp.MustCompile(`^\s*([^:]{1,80})\s*:\s*(.+?)\s*$`)

// Parsed is the intermediate parse of one requirements blob. It is stored
// next to the structured fields as an audit trail, so normalization rules
// can evolve without refetching source data.
type Parsed struct {
	// Fields maps lowercased labels to trimmed values.
	Fields map[string]string `json:"fields"`
	// Notes holds cleaned lines that did not match the label shape.
	Notes []string `json:"notes"`
	// RawHTML is the unprocessed source markup, nil when absent.
	RawHTML *string `json:"raw_html"`
}

// ExtractFields splits a markup fragment into labeled fields and free-form
// note lines. A nil input yields an empty parse; it never fails.
func ExtractFields(markup *string) Parsed {
	parsed := Parsed{
		Fields: map[string]string{},
		Notes:  []string{},
	}
	if markup == nil || *markup == "" {
		return parsed
	}
	parsed.RawHTML = markup

	for _, line := range StripTags(*markup) {
		if m := labelRE.FindStringSubmatch(line); m != nil {
			label := strings.ToLower(strings.TrimSpace(m[1]))
			parsed.Fields[label] = strings.TrimSpace(m[2])
		} else {
			parsed.Notes = append(parsed.Notes, line)
		}
	}
	return parsed
}
