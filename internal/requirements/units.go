package requirements

import (
	"regexp"
	"strconv"
	"strings"
)

// Unit parsers are total functions: absence of a pattern is a normal
// outcome reported through the ok return, never an error. Each matcher
// takes the first hit and does not try to disambiguate multiple size
// mentions in one string.

var (
	gbRE   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*gb`)
	mbRE   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*mb`)
	vramRE = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*gb\s*vram`)
	// Looser form: a GB figure with a VRAM-indicating token anywhere after it.
	vramLooseRE = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*gb.*(vram|video memory|video ram)`)
	directxRE   = regexp.MustCompile(`directx\s*(?:version\s*)?(\d+(?:\.\d+)?)`)
	openglRE    = regexp.MustCompile(`opengl\s*(\d+(?:\.\d+)?)`)
	vulkanRE    = regexp.MustCompile(`\bvulkan\b`)
)

// ParseGB extracts a memory size in gigabytes from free text. A figure in
// MB is converted; when neither unit matches, ok is false.
func ParseGB(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	t := strings.ToLower(text)
	if m := gbRE.FindStringSubmatch(t); m != nil {
		return mustFloat(m[1]), true
	}
	if m := mbRE.FindStringSubmatch(t); m != nil {
		return mustFloat(m[1]) / 1024.0, true
	}
	return 0, false
}

// ParseVRAMGB extracts a video-memory size in gigabytes. The figure must be
// tied to a VRAM token ("vram", "video memory", "video ram"); a bare GB
// mention does not count.
func ParseVRAMGB(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	t := strings.ToLower(text)
	if m := vramRE.FindStringSubmatch(t); m != nil {
		return mustFloat(m[1]), true
	}
	if m := vramLooseRE.FindStringSubmatch(t); m != nil {
		return mustFloat(m[1]), true
	}
	return 0, false
}

// ParseDirectXVersion extracts the version number following a DirectX
// mention, with an optional "version" word between name and number.
func ParseDirectXVersion(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	if m := directxRE.FindStringSubmatch(strings.ToLower(text)); m != nil {
		return mustFloat(m[1]), true
	}
	return 0, false
}

// ParseOpenGLVersion extracts the version number following an OpenGL mention.
func ParseOpenGLVersion(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	if m := openglRE.FindStringSubmatch(strings.ToLower(text)); m != nil {
		return mustFloat(m[1]), true
	}
	return 0, false
}

// MentionsVulkan reports whether the text contains "vulkan" as a whole word.
func MentionsVulkan(text string) bool {
	if text == "" {
		return false
	}
	return vulkanRE.MatchString(strings.ToLower(text))
}

func mustFloat(s string) float64 {
	// The capture groups above only match decimal digits and a dot.
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
