package handlers

import (
	"strings"

	"decal-transfer-studio/internal/decal"
	"decal-transfer-studio/internal/studio"
)

type photoSlot int

const (
	slotAuto photoSlot = iota
	slotHelmet1
	slotHelmet2
)

var (
	helmet1Words = []string{"helmet 1", "helmet1", "h1", "source", "mẫu", "nguồn", "mũ 1", "nón 1"}
	helmet2Words = []string{"helmet 2", "helmet2", "h2", "target", "đích", "mũ 2", "nón 2"}
)

// slotFromCaption reads an explicit "helmet 1"/"helmet 2" hint.
func slotFromCaption(caption string) photoSlot {
	c := " " + strings.ToLower(strings.TrimSpace(caption)) + " "
	if c == "  " {
		return slotAuto
	}
	for _, w := range helmet2Words {
		if containsWord(c, w) {
			return slotHelmet2
		}
	}
	for _, w := range helmet1Words {
		if containsWord(c, w) {
			return slotHelmet1
		}
	}
	return slotAuto
}

// choosePhotoSlot routes a lone photo: the first photo of a session is the
// decal source, later ones are the target.
func choosePhotoSlot(caption string, st studio.State) photoSlot {
	if slot := slotFromCaption(caption); slot != slotAuto {
		return slot
	}
	if st.Helmet1 == nil || st.Helmet1Status == studio.StatusError {
		return slotHelmet1
	}
	return slotHelmet2
}

var multiWordTypes = map[string]decal.HelmetType{
	"half face": decal.HalfFace,
	"open face": decal.OpenFace,
	"full face": decal.FullFace,
	"nửa đầu":   decal.HalfFace,
	"cào cào":   decal.CrossMX,
}

// helmetTypeIn finds a helmet type mentioned anywhere in text.
func helmetTypeIn(text string) (decal.HelmetType, bool) {
	if t, ok := decal.ParseHelmetType(text); ok {
		return t, true
	}

	lower := " " + strings.ToLower(text) + " "
	for phrase, t := range multiWordTypes {
		if containsWord(lower, phrase) {
			return t, true
		}
	}

	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == ';' || r == '\n' || r == '(' || r == ')'
	}) {
		if t, ok := decal.ParseHelmetType(tok); ok {
			return t, true
		}
	}
	return "", false
}

// containsWord matches w in padded text only at word boundaries.
func containsWord(padded, w string) bool {
	idx := strings.Index(padded, w)
	for idx >= 0 {
		before := idx == 0 || isBoundary(padded[idx-1])
		end := idx + len(w)
		after := end >= len(padded) || isBoundary(padded[end])
		if before && after {
			return true
		}
		next := strings.Index(padded[idx+1:], w)
		if next < 0 {
			return false
		}
		idx += next + 1
	}
	return false
}

func isBoundary(b byte) bool {
	switch b {
	case ' ', ',', '.', ':', ';', '!', '?', '\n', '(', ')', '-', '/':
		return true
	}
	return false
}
