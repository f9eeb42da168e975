package decal

import (
	"fmt"
	"regexp"
	"strings"
)

type field struct {
	en  string
	vi  string
	get func(*Prompt) *string
}

// fields is the canonical label set; order is the encode order.
var fields = []field{
	{en: "Decal Theme", vi: "Chủ đề decal", get: func(p *Prompt) *string { return &p.Theme }},
	{en: "Motifs", vi: "Mô-típ", get: func(p *Prompt) *string { return &p.Motifs }},
	{en: "Pattern Flow", vi: "Dòng chảy họa tiết", get: func(p *Prompt) *string { return &p.Flow }},
	{en: "Palette HEX", vi: "Bảng màu HEX", get: func(p *Prompt) *string { return &p.Palette }},
	{en: "Density", vi: "Mật độ", get: func(p *Prompt) *string { return &p.Density }},
	{en: "Finish Cues", vi: "Hiệu ứng bề mặt", get: func(p *Prompt) *string { return &p.Finish }},
	{en: "Typography", vi: "Chữ", get: func(p *Prompt) *string { return &p.Typography }},
	{en: "Mood/Style Adjectives", vi: "Tính cách", get: func(p *Prompt) *string { return &p.Mood }},
}

var constraintsLabel = field{en: "Constraints", vi: "Ràng buộc"}

var labelLine = regexp.MustCompile(`\[(.*?)\]:\s*(.*)`)

// Constraints renders the constraint sentence selected by the two flags.
func Constraints(lang Language, preserveFinish, avoidZones bool) string {
	var parts []string
	if preserveFinish {
		parts = append(parts, pick(lang, "Keep helmet shape/material", "Giữ nguyên hình dáng và vật liệu của nón bảo hiểm"))
	}
	if avoidZones {
		parts = append(parts, pick(lang, "avoid visor & vents", "tránh các vùng kính và khe thông gió"))
	}
	if preserveFinish {
		parts = append(parts, pick(lang, "preserve reflections", "bảo toàn hiệu ứng phản chiếu ánh sáng"))
	}
	if len(parts) == 0 {
		return pick(lang, "None", "Không có")
	}
	return strings.Join(parts, ", ") + "."
}

// Encode renders p as one "[Label]: value" line per field followed by the
// constraints line.
func Encode(p Prompt, lang Language, preserveFinish, avoidZones bool) string {
	var b strings.Builder
	b.Grow(512)
	for _, f := range fields {
		b.WriteString(fmt.Sprintf("[%s]: %s\n", pick(lang, f.en, f.vi), *f.get(&p)))
	}
	b.WriteString(fmt.Sprintf("[%s]: %s", pick(lang, constraintsLabel.en, constraintsLabel.vi), Constraints(lang, preserveFinish, avoidZones)))
	return b.String()
}

// Decode is the lenient inverse of Encode. Labels in either language are
// accepted, unknown lines are ignored and absent fields stay empty.
func Decode(text string) Prompt {
	var p Prompt
	for _, line := range strings.Split(text, "\n") {
		m := labelLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key := strings.TrimSpace(m[1])
		value := strings.TrimSpace(m[2])
		for _, f := range fields {
			if key == f.en || key == f.vi {
				*f.get(&p) = value
				break
			}
		}
	}
	return p
}

// LooksEncoded reports whether text contains at least one known label line.
func LooksEncoded(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		m := labelLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key := strings.TrimSpace(m[1])
		for _, f := range fields {
			if key == f.en || key == f.vi {
				return true
			}
		}
	}
	return false
}
