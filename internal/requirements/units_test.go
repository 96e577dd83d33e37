package requirements

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseGB(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		want  float64
		match bool
	}{
		{name: "plain gb", text: "8 GB RAM", want: 8, match: true},
		{name: "decimal gb", text: "1.5GB", want: 1.5, match: true},
		{name: "mb fallback", text: "512 MB", want: 0.5, match: true},
		{name: "gb wins over mb", text: "2 GB (2048 MB)", want: 2, match: true},
		{name: "first match wins", text: "4 GB required, 8 GB preferred", want: 4, match: true},
		{name: "no unit", text: "lots of memory", match: false},
		{name: "empty", text: "", match: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseGB(tc.text)
			require.Equal(t, tc.match, ok)
			if tc.match {
				require.InDelta(t, tc.want, got, 0.0001)
			}
		})
	}
}

func TestParseVRAMGB(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		want  float64
		match bool
	}{
		{name: "tight form", text: "2 GB VRAM", want: 2, match: true},
		{name: "token after unit", text: "GPU with 4 GB of video memory", want: 4, match: true},
		{name: "video ram synonym", text: "1 GB dedicated video ram", want: 1, match: true},
		{name: "bare gb is not vram", text: "NVIDIA GTX 970 4 GB", match: false},
		{name: "empty", text: "", match: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseVRAMGB(tc.text)
			require.Equal(t, tc.match, ok)
			if tc.match {
				require.InDelta(t, tc.want, got, 0.0001)
			}
		})
	}
}

func TestParseAPIVersions(t *testing.T) {
	t.Parallel()

	dx, ok := ParseDirectXVersion("DirectX: Version 11")
	require.True(t, ok)
	require.InDelta(t, 11.0, dx, 0.0001)

	dx, ok = ParseDirectXVersion("requires directx 9.0c compatible card")
	require.True(t, ok)
	require.InDelta(t, 9.0, dx, 0.0001)

	_, ok = ParseDirectXVersion("OpenGL 4.5")
	require.False(t, ok)

	gl, ok := ParseOpenGLVersion("OpenGL 3.3 or better")
	require.True(t, ok)
	require.InDelta(t, 3.3, gl, 0.0001)

	_, ok = ParseOpenGLVersion("DirectX 12")
	require.False(t, ok)
}

func TestMentionsVulkan(t *testing.T) {
	t.Parallel()

	require.True(t, MentionsVulkan("Vulkan support required"))
	require.True(t, MentionsVulkan("supports VULKAN and DirectX 12"))
	require.False(t, MentionsVulkan("vulkanism is not a word"))
	require.False(t, MentionsVulkan(""))
}
