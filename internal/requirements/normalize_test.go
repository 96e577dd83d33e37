package requirements

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeLabels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   map[string]string
		want map[string]string
	}{
		{
			name: "synonyms fold into canonical keys",
			in: map[string]string{
				"hard drive": "20 GB",
				"cpu":        "Intel i5",
				"video card": "GTX 960",
				"ram":        "8 GB",
			},
			want: map[string]string{
				"hard drive": "20 GB",
				"cpu":        "Intel i5",
				"video card": "GTX 960",
				"ram":        "8 GB",
				"storage":    "20 GB",
				"processor":  "Intel i5",
				"graphics":   "GTX 960",
				"memory":     "8 GB",
			},
		},
		{
			name: "direct label wins over synonym",
			in:   map[string]string{"hard drive": "20 GB", "storage": "25 GB"},
			want: map[string]string{"hard drive": "20 GB", "storage": "25 GB"},
		},
		{
			name: "hard drive takes precedence over hdd",
			in:   map[string]string{"hard drive": "20 GB", "hdd": "30 GB"},
			want: map[string]string{"hard drive": "20 GB", "hdd": "30 GB", "storage": "20 GB"},
		},
		{
			name: "video card takes precedence over video",
			in:   map[string]string{"video card": "GTX 960", "video": "integrated"},
			want: map[string]string{"video card": "GTX 960", "video": "integrated", "graphics": "GTX 960"},
		},
		{
			name: "empty input",
			in:   map[string]string{},
			want: map[string]string{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, NormalizeLabels(tc.in))
		})
	}
}

func TestNormalizeLabels_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := map[string]string{"cpu": "i7"}
	_ = NormalizeLabels(in)
	require.Equal(t, map[string]string{"cpu": "i7"}, in)
}
