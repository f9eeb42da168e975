package decal

import "regexp"

const maxHexCodes = 6

var hexCode = regexp.MustCompile(`#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})`)

// Neutral fallbacks used when the palette names fewer than six colors.
const (
	FallbackBase1   = "#1A1A1A"
	FallbackBase2   = "#EAEAEA"
	FallbackGrey1   = "#808080"
	FallbackGrey2   = "#BEBEBE"
	FallbackAccent1 = "#444444"
	FallbackAccent2 = "#AAAAAA"
)

// ExtractHexCodes returns up to six #RRGGBB / #RGB tokens in first-seen order.
func ExtractHexCodes(text string) []string {
	if text == "" {
		return nil
	}
	return hexCode.FindAllString(text, maxHexCodes)
}

type PalettePlan struct {
	Base1   string `json:"base1" yaml:"base1"`
	Base2   string `json:"base2" yaml:"base2"`
	Grey1   string `json:"grey1" yaml:"grey1"`
	Grey2   string `json:"grey2" yaml:"grey2"`
	Accent1 string `json:"accent1" yaml:"accent1"`
	Accent2 string `json:"accent2" yaml:"accent2"`
}

// PlanPalette fills the six palette slots. Accents fall back to the first two
// extracted colors before the neutral grays, so no unrequested hue appears.
func PlanPalette(palette string) PalettePlan {
	codes := ExtractHexCodes(palette)
	at := func(i int) string {
		if i < len(codes) {
			return codes[i]
		}
		return ""
	}
	return PalettePlan{
		Base1:   firstNonEmpty(at(0), FallbackBase1),
		Base2:   firstNonEmpty(at(1), FallbackBase2),
		Grey1:   firstNonEmpty(at(2), FallbackGrey1),
		Grey2:   firstNonEmpty(at(3), FallbackGrey2),
		Accent1: firstNonEmpty(at(4), at(0), FallbackAccent1),
		Accent2: firstNonEmpty(at(5), at(1), FallbackAccent2),
	}
}

func (p PalettePlan) Colors() []string {
	return []string{p.Base1, p.Base2, p.Grey1, p.Grey2, p.Accent1, p.Accent2}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
