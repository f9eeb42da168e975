package decal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileInstruction(t *testing.T) {
	for _, ht := range HelmetTypes() {
		for _, lang := range []Language{English, Vietnamese} {
			got := ProfileInstruction(ht, lang)
			require.True(t, strings.HasPrefix(got, "\n\n"), "%s/%s", ht, lang)
			assert.Greater(t, len(got), 20)
		}
	}
	assert.Equal(t, "", ProfileInstruction("", English))
	assert.Contains(t, ProfileInstruction(CrossMX, Vietnamese), "HƯỚNG DẪN")
}

func TestImagenPrompt(t *testing.T) {
	got := ImagenPrompt(OpenFace, English, "[Decal Theme]: flames")
	assert.True(t, strings.HasPrefix(got, "URGENT: Generate an open-face"))
	assert.Contains(t, got, "\n\nApply the following decal:\n[Decal Theme]: flames\n\nINSTRUCTION: This is an open-face")
	assert.True(t, strings.HasSuffix(got, "but the face area is open."))
}

func TestPlaceholderPrompt(t *testing.T) {
	got := PlaceholderPrompt(FullFace, English, "brief")
	assert.Contains(t, got, "brand new fullface motorcycle helmet")
	assert.Contains(t, got, "to it:\n\nbrief\n\nINSTRUCTION: This is a full-face helmet.")
}

func TestEditPrompt(t *testing.T) {
	assert.Equal(t, "brief", EditPrompt("", English, "brief"))
	assert.True(t, strings.HasPrefix(EditPrompt(HalfFace, English, "brief"), "brief\n\nINSTRUCTION: This is a half-face"))
}

func TestFullViewPrompt(t *testing.T) {
	got := FullViewPrompt("MY BRIEF")
	assert.Contains(t, got, "---\nMY BRIEF\n---")
	assert.Contains(t, got, "EXACTLY THREE VIEWS")
}

func TestStylePrompt(t *testing.T) {
	assert.Equal(t, "Redraw this helmet as a clean, technical line art sketch. Strength: 70%.", StylePrompt(StyleLineSketch, 70, false))
	assert.Equal(t,
		"Transform this helmet into a glowing neon and chrome cyberpunk design. Strength: 100%. Preserve the original gloss or matte finish of the helmet shell underneath the style.",
		StylePrompt(StyleNeon, 150, true))
	assert.Equal(t, "", StylePrompt("oil-paint", 50, true))
}

func TestParseHelmetType(t *testing.T) {
	cases := map[string]HelmetType{
		"fullface":  FullFace,
		"Full-Face": FullFace,
		"3/4":       OpenFace,
		"MX":        CrossMX,
		"half-face": HalfFace,
	}
	for in, want := range cases {
		got, ok := ParseHelmetType(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseHelmetType("modular")
	assert.False(t, ok)
}

func TestLanguageToggle(t *testing.T) {
	assert.Equal(t, Vietnamese, English.Toggle())
	assert.Equal(t, English, Vietnamese.Toggle())
}

func TestDownloadName(t *testing.T) {
	ts := time.Date(2026, time.March, 7, 9, 5, 59, 0, time.Local)
	assert.Equal(t, "20260307_0905", Timestamp(ts))
	assert.Equal(t, "single_view_20260307_0905.png", DownloadName(KindSingleView, ts))
	assert.Equal(t, "style_watercolor_20260307_0905.png", DownloadName(StyleKind(StyleWatercolor), ts))
}
