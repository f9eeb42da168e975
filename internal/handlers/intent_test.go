package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"decal-transfer-studio/internal/decal"
	"decal-transfer-studio/internal/gemini"
	"decal-transfer-studio/internal/studio"
)

func TestSlotFromCaption(t *testing.T) {
	cases := map[string]photoSlot{
		"":                      slotAuto,
		"nice helmet":           slotAuto,
		"Helmet 1":              slotHelmet1,
		"this is the source":    slotHelmet1,
		"mẫu":                   slotHelmet1,
		"helmet 2, full face":   slotHelmet2,
		"target":                slotHelmet2,
		"H2":                    slotHelmet2,
		"h12 is not a slot":     slotAuto,
		"targeting the new one": slotAuto,
	}
	for caption, want := range cases {
		assert.Equal(t, want, slotFromCaption(caption), caption)
	}
}

func TestChoosePhotoSlot(t *testing.T) {
	img := &gemini.ImageInput{MimeType: "image/png", Data: "AA=="}

	assert.Equal(t, slotHelmet1, choosePhotoSlot("", studio.State{}))
	assert.Equal(t, slotHelmet2, choosePhotoSlot("", studio.State{Helmet1: img, Helmet1Status: studio.StatusExtracted}))
	assert.Equal(t, slotHelmet1, choosePhotoSlot("", studio.State{Helmet1: img, Helmet1Status: studio.StatusError}))
	assert.Equal(t, slotHelmet1, choosePhotoSlot("helmet 1", studio.State{Helmet1: img, Helmet1Status: studio.StatusExtracted}))
	assert.Equal(t, slotHelmet2, choosePhotoSlot("helmet 2", studio.State{}))
}

func TestHelmetTypeIn(t *testing.T) {
	cases := map[string]decal.HelmetType{
		"fullface":             decal.FullFace,
		"make it a Full Face":  decal.FullFace,
		"3/4":                  decal.OpenFace,
		"open face please":     decal.OpenFace,
		"nón cào cào":          decal.CrossMX,
		"mx, please":           decal.CrossMX,
		"half":                 decal.HalfFace,
		"kiểu nửa đầu nhé":     decal.HalfFace,
	}
	for text, want := range cases {
		got, ok := helmetTypeIn(text)
		assert.True(t, ok, text)
		assert.Equal(t, want, got, text)
	}

	for _, text := range []string{"", "hello", "fullfacial", "helmet 1"} {
		_, ok := helmetTypeIn(text)
		assert.False(t, ok, text)
	}
}
