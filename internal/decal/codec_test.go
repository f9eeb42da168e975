package decal

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePrompt() Prompt {
	return Prompt{
		Theme:      "aggressive geometric stripes",
		Motifs:     "asymmetric chevrons, halftone dots",
		Flow:       "rear to crown to right side",
		Palette:    "#111111, #F2F2F2, #D7263D, #808080",
		Density:    "dense",
		Finish:     "matte ink",
		Typography: "none",
		Mood:       "aggressive, modern",
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, lang := range []Language{English, Vietnamese} {
		t.Run(string(lang), func(t *testing.T) {
			want := samplePrompt()
			got := Decode(Encode(want, lang, true, true))
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeLabelOrder(t *testing.T) {
	text := Encode(samplePrompt(), English, false, false)
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 9)

	wantPrefixes := []string{
		"[Decal Theme]: ",
		"[Motifs]: ",
		"[Pattern Flow]: ",
		"[Palette HEX]: ",
		"[Density]: ",
		"[Finish Cues]: ",
		"[Typography]: ",
		"[Mood/Style Adjectives]: ",
		"[Constraints]: ",
	}
	for i, prefix := range wantPrefixes {
		assert.True(t, strings.HasPrefix(lines[i], prefix), "line %d = %q", i, lines[i])
	}
}

func TestConstraints(t *testing.T) {
	tests := []struct {
		name           string
		lang           Language
		preserveFinish bool
		avoidZones     bool
		want           string
	}{
		{"en none", English, false, false, "None"},
		{"vi none", Vietnamese, false, false, "Không có"},
		{"en all", English, true, true, "Keep helmet shape/material, avoid visor & vents, preserve reflections."},
		{"en zones only", English, false, true, "avoid visor & vents."},
		{"en finish only", English, true, false, "Keep helmet shape/material, preserve reflections."},
		{"vi all", Vietnamese, true, true, "Giữ nguyên hình dáng và vật liệu của nón bảo hiểm, tránh các vùng kính và khe thông gió, bảo toàn hiệu ứng phản chiếu ánh sáng."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Constraints(tt.lang, tt.preserveFinish, tt.avoidZones))
		})
	}
}

func TestEncodeNoneConstraintLine(t *testing.T) {
	en := Encode(Prompt{}, English, false, false)
	assert.True(t, strings.HasSuffix(en, "[Constraints]: None"))

	vi := Encode(Prompt{}, Vietnamese, false, false)
	assert.True(t, strings.HasSuffix(vi, "[Ràng buộc]: Không có"))
}

func TestDecodeLenient(t *testing.T) {
	text := "Some commentary from the user\n" +
		"[Decal Theme]:   flames  \n" +
		"[Mô-típ]: rồng\n" +
		"[Unknown Label]: ignored\n" +
		"not a label line: nope\n" +
		"[Typography]:\n"

	got := Decode(text)
	assert.Equal(t, Prompt{Theme: "flames", Motifs: "rồng"}, got)
}

func TestDecodeLastValueWins(t *testing.T) {
	got := Decode("[Density]: minimal\n[Mật độ]: dense")
	assert.Equal(t, "dense", got.Density)
}

func TestLooksEncoded(t *testing.T) {
	assert.True(t, LooksEncoded("hello\n[Palette HEX]: #fff"))
	assert.False(t, LooksEncoded("[Whatever]: x\nplain text"))
	assert.False(t, LooksEncoded(""))
}
