package decal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProPromptEnglish(t *testing.T) {
	p := samplePrompt()
	p.Typography = "RACER"
	got := BuildProPrompt(p, FullFace, English, true)

	assert.True(t, strings.HasPrefix(got, "[Decal Theme] aggressive geometric stripes (e.g.,"))
	assert.Contains(t, got, "Base: #111111, #F2F2F2; greys: #D7263D, #808080; accents (≤ 20%): #111111, #F2F2F2.")
	assert.Contains(t, got, "[Density] dense (minimal / balanced / dense)")
	assert.Contains(t, got, "[Typography] RACER, placement right side, size 15mm; keep clear space 5mm; stripes must not cut through text (e.g.,")
	assert.Contains(t, got, "[Helmet Type Modifiers]\nFull-face: one-piece shell")
	assert.Contains(t, got, "Coverage ratio: Primary 45%, Secondary 25%")
	assert.NotContains(t, got, "{")
}

func TestBuildProPromptVietnamese(t *testing.T) {
	p := samplePrompt()
	p.Density = ""
	got := BuildProPrompt(p, CrossMX, Vietnamese, false)

	assert.True(t, strings.HasPrefix(got, "[Chủ đề] aggressive geometric stripes"))
	assert.Contains(t, got, "[Mật độ] cân bằng;")
	assert.Contains(t, got, "[Chữ] không (")
	assert.Contains(t, got, "[Loại mũ] Cào cào/MX: có lưỡi trai;")
}

func TestBuildProPromptTypographyAbsent(t *testing.T) {
	for _, typo := range []string{"", "None", "N/A none", "KHÔNG CÓ", "không có chữ"} {
		p := Prompt{Typography: typo}
		got := BuildProPrompt(p, HalfFace, English, true)
		assert.Contains(t, got, "[Typography] none (e.g.,", "typography %q", typo)
	}
}

func TestBuildProPromptDeterministic(t *testing.T) {
	p := samplePrompt()
	a := BuildProPrompt(p, OpenFace, English, true)
	b := BuildProPrompt(p, OpenFace, English, true)
	require.Equal(t, a, b)
}

func TestBuildProPromptDoesNotExpandUserPlaceholders(t *testing.T) {
	p := Prompt{Theme: "{mood}", Mood: "calm"}
	got := BuildProPrompt(p, FullFace, English, true)
	assert.True(t, strings.HasPrefix(got, "[Decal Theme] {mood} (e.g.,"))
}

func TestHasTypography(t *testing.T) {
	assert.True(t, HasTypography("SPEED 46"))
	assert.True(t, HasTypography("  "))
	assert.False(t, HasTypography(""))
	assert.False(t, HasTypography("none"))
	assert.False(t, HasTypography("Không có"))
}
