package decal

import "time"

// Download kinds used as filename prefixes.
const (
	KindSingleView = "single_view"
	KindFullView   = "full_view_composite"
)

func StyleKind(id StyleID) string {
	return "style_" + string(id)
}

// Timestamp formats t as YYYYMMDD_HHMM in t's location.
func Timestamp(t time.Time) string {
	return t.Format("20060102_1504")
}

func DownloadName(kind string, t time.Time) string {
	return kind + "_" + Timestamp(t) + ".png"
}
