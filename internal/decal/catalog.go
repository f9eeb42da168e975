package decal

type NamedOption struct {
	Key  string
	Name string
}

var helmetTypeNames = map[HelmetType]bilingual{
	HalfFace: {en: "Half-face", vi: "Nửa đầu"},
	OpenFace: {en: "Open-face (3/4)", vi: "3/4"},
	FullFace: {en: "Full-face", vi: "Full-face"},
	CrossMX:  {en: "Cross / MX", vi: "Cào cào / MX"},
}

var styleNames = map[StyleID]string{
	StyleLineSketch: "Line sketch",
	StyleWatercolor: "Watercolor",
	StyleMarker:     "Marker",
	StyleNeon:       "Neon",
}

func HelmetTypeName(t HelmetType, lang Language) string {
	if n, ok := helmetTypeNames[t]; ok {
		return n.in(lang)
	}
	return string(t)
}

func HelmetTypeOptions(lang Language) []NamedOption {
	out := make([]NamedOption, 0, len(helmetTypeNames))
	for _, t := range HelmetTypes() {
		out = append(out, NamedOption{Key: string(t), Name: HelmetTypeName(t, lang)})
	}
	return out
}

func Styles() []StyleID {
	return []StyleID{StyleLineSketch, StyleWatercolor, StyleMarker, StyleNeon}
}

func StyleOptions() []NamedOption {
	out := make([]NamedOption, 0, len(styleNames))
	for _, id := range Styles() {
		out = append(out, NamedOption{Key: string(id), Name: styleNames[id]})
	}
	return out
}
