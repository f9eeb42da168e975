// Package placeholder renders neutral right-profile helmet silhouettes that
// the edit model turns into a photorealistic blank helmet before a decal is
// applied.
package placeholder

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/sync/singleflight"

	"decal-transfer-studio/internal/decal"
	"decal-transfer-studio/internal/gemini"
)

const (
	DefaultSize = 512
	MimeType    = "image/png"

	backgroundColor = "#FFFFFF"
	shellColor      = "#111111"
	visorColor      = "#3A3A3A"
	trimColor       = "#2A2A2A"
)

// Renderer memoises one PNG per helmet type. Concurrent first requests for
// the same type render once.
type Renderer struct {
	size int

	mu    sync.RWMutex
	cache map[decal.HelmetType][]byte
	group singleflight.Group
}

func New(size int) *Renderer {
	if size < 64 {
		size = DefaultSize
	}
	return &Renderer{
		size:  size,
		cache: make(map[decal.HelmetType][]byte),
	}
}

func (r *Renderer) PNG(t decal.HelmetType) ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown helmet type %q", t)
	}

	r.mu.RLock()
	cached, ok := r.cache[t]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := r.group.Do(string(t), func() (any, error) {
		out, err := Render(t, r.size)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache[t] = out
		r.mu.Unlock()
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Image returns the placeholder as an inline image for editImage.
func (r *Renderer) Image(t decal.HelmetType) (gemini.ImageInput, error) {
	raw, err := r.PNG(t)
	if err != nil {
		return gemini.ImageInput{}, err
	}
	return gemini.ImageInput{
		MimeType: MimeType,
		Data:     base64.StdEncoding.EncodeToString(raw),
	}, nil
}

// Render draws the silhouette for t on a white square of the given size.
func Render(t decal.HelmetType, size int) ([]byte, error) {
	dc := gg.NewContext(size, size)
	dc.SetHexColor(backgroundColor)
	dc.Clear()

	s := float64(size)
	cx, cy := s*0.5, s*0.52

	switch t {
	case decal.FullFace:
		drawFullFace(dc, s, cx, cy)
	case decal.OpenFace:
		drawOpenFace(dc, s, cx, cy)
	case decal.HalfFace:
		drawHalfFace(dc, s, cx, cy)
	case decal.CrossMX:
		drawCrossMX(dc, s, cx, cy)
	default:
		return nil, fmt.Errorf("unknown helmet type %q", t)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawFullFace(dc *gg.Context, s, cx, cy float64) {
	dc.SetHexColor(shellColor)
	dc.DrawEllipse(cx, cy, s*0.34, s*0.32)
	dc.Fill()

	// chin bar
	dc.DrawRoundedRectangle(cx+s*0.05, cy+s*0.12, s*0.28, s*0.18, s*0.06)
	dc.Fill()

	dc.SetHexColor(visorColor)
	dc.DrawRoundedRectangle(cx+s*0.08, cy-s*0.08, s*0.27, s*0.15, s*0.05)
	dc.Fill()
}

func drawOpenFace(dc *gg.Context, s, cx, cy float64) {
	dc.SetHexColor(shellColor)
	dc.DrawEllipse(cx, cy, s*0.33, s*0.31)
	dc.Fill()

	// face opening
	dc.SetHexColor(backgroundColor)
	dc.DrawEllipse(cx+s*0.3, cy+s*0.08, s*0.13, s*0.2)
	dc.Fill()

	dc.SetHexColor(trimColor)
	dc.SetLineWidth(s * 0.012)
	dc.DrawLine(cx+s*0.17, cy-s*0.12, cx+s*0.2, cy+s*0.28)
	dc.Stroke()
}

func drawHalfFace(dc *gg.Context, s, cx, cy float64) {
	dc.SetHexColor(shellColor)
	dc.DrawEllipse(cx, cy+s*0.05, s*0.33, s*0.28)
	dc.Fill()

	// cut the dome at ear level
	dc.SetHexColor(backgroundColor)
	dc.DrawRectangle(0, cy+s*0.07, s, s)
	dc.Fill()

	// brim
	dc.SetHexColor(trimColor)
	dc.DrawRoundedRectangle(cx-s*0.34, cy+s*0.03, s*0.76, s*0.04, s*0.02)
	dc.Fill()
}

func drawCrossMX(dc *gg.Context, s, cx, cy float64) {
	dc.SetHexColor(shellColor)
	dc.DrawEllipse(cx-s*0.03, cy, s*0.31, s*0.3)
	dc.Fill()

	// peak
	dc.MoveTo(cx+s*0.06, cy-s*0.27)
	dc.LineTo(cx+s*0.42, cy-s*0.2)
	dc.LineTo(cx+s*0.38, cy-s*0.13)
	dc.LineTo(cx+s*0.12, cy-s*0.15)
	dc.ClosePath()
	dc.Fill()

	// elongated chin guard
	dc.MoveTo(cx+s*0.12, cy+s*0.1)
	dc.LineTo(cx+s*0.4, cy+s*0.2)
	dc.LineTo(cx+s*0.3, cy+s*0.3)
	dc.LineTo(cx+s*0.05, cy+s*0.27)
	dc.ClosePath()
	dc.Fill()

	// goggle opening
	dc.SetHexColor(visorColor)
	dc.DrawRoundedRectangle(cx+s*0.12, cy-s*0.09, s*0.18, s*0.14, s*0.03)
	dc.Fill()
}
