package decal

import "strings"

// Prompt is the structured "read" of a helmet decal. Every field is free
// text and may be empty; Palette usually embeds HEX tokens.
type Prompt struct {
	Theme      string `json:"theme" yaml:"theme"`
	Motifs     string `json:"motifs" yaml:"motifs"`
	Flow       string `json:"flow" yaml:"flow"`
	Palette    string `json:"palette" yaml:"palette"`
	Density    string `json:"density" yaml:"density"`
	Finish     string `json:"finish" yaml:"finish"`
	Typography string `json:"typography" yaml:"typography"`
	Mood       string `json:"mood" yaml:"mood"`
}

type HelmetType string

const (
	HalfFace HelmetType = "half-face"
	OpenFace HelmetType = "open-face"
	FullFace HelmetType = "fullface"
	CrossMX  HelmetType = "cross-mx"
)

func HelmetTypes() []HelmetType {
	return []HelmetType{HalfFace, OpenFace, FullFace, CrossMX}
}

func (t HelmetType) Valid() bool {
	switch t {
	case HalfFace, OpenFace, FullFace, CrossMX:
		return true
	}
	return false
}

// ParseHelmetType accepts the canonical names plus a few spellings users
// actually type ("full-face", "3/4", "mx").
func ParseHelmetType(value string) (HelmetType, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "half-face", "halfface", "half", "nửa đầu":
		return HalfFace, true
	case "open-face", "openface", "open", "3/4":
		return OpenFace, true
	case "fullface", "full-face", "full":
		return FullFace, true
	case "cross-mx", "cross", "mx", "motocross", "cào cào":
		return CrossMX, true
	}
	return "", false
}

type Language string

const (
	English    Language = "en"
	Vietnamese Language = "vi"
)

func (l Language) Toggle() Language {
	if l == Vietnamese {
		return English
	}
	return Vietnamese
}

func ParseLanguage(value string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "en", "english":
		return English, true
	case "vi", "vietnamese", "tiếng việt":
		return Vietnamese, true
	}
	return "", false
}

// pick returns the Vietnamese text for vi and English otherwise.
func pick(lang Language, en, vi string) string {
	if lang == Vietnamese {
		return vi
	}
	return en
}
