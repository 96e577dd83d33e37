package requirements

import (
	"encoding/json"
	"strings"
)

// Record is the fully normalized form of one requirements blob. Pointer
// fields are nil when the source text was absent or unparseable; the raw
// markup and intermediate parse are retained regardless.
type Record struct {
	OSText    *string
	CPUText   *string
	GPUText   *string
	NotesText *string

	RAMGB     *float64
	VRAMGB    *float64
	StorageGB *float64

	DXVersion     *float64
	OpenGLVersion *float64
	Vulkan        bool

	RawHTML    *string
	ParsedJSON string
}

// Build runs the full extraction pipeline over one markup blob: strip and
// split into fields/notes, fold synonym labels, then apply the unit parsers.
// The version and capability parsers run against a combined string of the
// graphics field, any directx field and all note lines, because API mentions
// frequently appear only in free-form notes.
func Build(rawHTML *string) Record {
	parsed := ExtractFields(rawHTML)
	fields := NormalizeLabels(parsed.Fields)

	rec := Record{
		OSText:  optField(fields, "os"),
		CPUText: optField(fields, "processor"),
		GPUText: optField(fields, "graphics"),
		RawHTML: parsed.RawHTML,
		Vulkan:  false,
	}

	combined := strings.TrimSpace(strings.Join([]string{
		fields["graphics"],
		fields["directx"],
		strings.Join(parsed.Notes, " "),
	}, " "))

	if v, ok := ParseGB(fields["memory"]); ok {
		rec.RAMGB = &v
	}
	if v, ok := ParseVRAMGB(fields["graphics"]); ok {
		rec.VRAMGB = &v
	}
	if v, ok := ParseGB(fields["storage"]); ok {
		rec.StorageGB = &v
	}
	if v, ok := ParseDirectXVersion(combined); ok {
		rec.DXVersion = &v
	}
	if v, ok := ParseOpenGLVersion(combined); ok {
		rec.OpenGLVersion = &v
	}
	rec.Vulkan = MentionsVulkan(combined)

	// "Additional Notes" is emitted first, then residual unlabeled lines.
	var noteParts []string
	if extra, ok := fields["additional notes"]; ok && extra != "" {
		noteParts = append(noteParts, extra)
	}
	for _, n := range parsed.Notes {
		if n != "" {
			noteParts = append(noteParts, n)
		}
	}
	if joined := strings.TrimSpace(strings.Join(noteParts, "\n")); joined != "" {
		rec.NotesText = &joined
	}

	// Parsed never contains values json cannot encode.
	audit, _ := json.Marshal(parsed)
	rec.ParsedJSON = string(audit)

	return rec
}

func optField(fields map[string]string, key string) *string {
	if v, ok := fields[key]; ok && v != "" {
		return &v
	}
	return nil
}
