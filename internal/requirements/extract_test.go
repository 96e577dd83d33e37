package requirements

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestStripTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		want   []string
	}{
		{
			name:   "breaks become lines",
			markup: "OS: Windows 10<br>Memory: 8 GB RAM<br/>",
			want:   []string{"OS: Windows 10", "Memory: 8 GB RAM"},
		},
		{
			name:   "list items become lines",
			markup: "<ul><li>Processor: i5</li><li>Graphics: GTX 960</li></ul>",
			want:   []string{"Processor: i5", "Graphics: GTX 960"},
		},
		{
			name:   "bold labels unwrap",
			markup: "<strong>Minimum:</strong><br><strong>OS</strong>: Ubuntu 20.04",
			want:   []string{"Minimum:", "OS: Ubuntu 20.04"},
		},
		{
			name:   "entities decode and whitespace collapses",
			markup: "Memory:&nbsp;&nbsp;8   GB &amp; more",
			want:   []string{"Memory: 8 GB & more"},
		},
		{
			name:   "unclosed tags tolerated",
			markup: "<p>OS: Windows<br><strong>broken",
			want:   []string{"OS: Windows", "broken"},
		},
		{
			name:   "empty",
			markup: "",
			want:   nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, StripTags(tc.markup))
		})
	}
}

func TestExtractFields(t *testing.T) {
	t.Parallel()

	markup := "<strong>Minimum:</strong><br>OS: Windows 10<br>Memory: 8 GB RAM<br>Requires a 64-bit processor"
	parsed := ExtractFields(&markup)

	require.Equal(t, "Windows 10", parsed.Fields["os"])
	require.Equal(t, "8 GB RAM", parsed.Fields["memory"])
	require.Equal(t, []string{"Requires a 64-bit processor"}, parsed.Notes)
	require.Equal(t, &markup, parsed.RawHTML)
}

func TestExtractFields_LabelShape(t *testing.T) {
	t.Parallel()

	// A line whose pre-colon segment exceeds 80 chars is a note, not a label.
	markup := strings.Repeat("a", 90) + ": value<br>os: ok"
	parsed := ExtractFields(&markup)

	require.Equal(t, "ok", parsed.Fields["os"])
	require.Len(t, parsed.Notes, 1)
}

func TestExtractFields_AbsentInput(t *testing.T) {
	t.Parallel()

	for _, markup := range []*string{nil, strptr("")} {
		parsed := ExtractFields(markup)
		require.Empty(t, parsed.Fields)
		require.Empty(t, parsed.Notes)
		require.Nil(t, parsed.RawHTML)
	}
}
