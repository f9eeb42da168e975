package placeholder

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decal-transfer-studio/internal/decal"
)

func TestRenderEveryHelmetType(t *testing.T) {
	for _, ht := range decal.HelmetTypes() {
		t.Run(string(ht), func(t *testing.T) {
			raw, err := Render(ht, 128)
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(raw))
			require.NoError(t, err)
			assert.Equal(t, 128, img.Bounds().Dx())
			assert.Equal(t, 128, img.Bounds().Dy())

			// corners stay background white
			r, g, b, _ := img.At(0, 0).RGBA()
			assert.Equal(t, uint32(0xffff), r)
			assert.Equal(t, uint32(0xffff), g)
			assert.Equal(t, uint32(0xffff), b)

			// shell centre is dark
			r, _, _, _ = img.At(50, 66).RGBA()
			assert.Less(t, r, uint32(0x8000))
		})
	}
}

func TestRenderUnknownType(t *testing.T) {
	_, err := Render(decal.HelmetType("bicycle"), 128)
	assert.Error(t, err)

	_, err = New(0).PNG(decal.HelmetType("bicycle"))
	assert.Error(t, err)
}

func TestRendererMemoises(t *testing.T) {
	r := New(96)

	var wg sync.WaitGroup
	results := make([][]byte, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := r.PNG(decal.FullFace)
			assert.NoError(t, err)
			results[i] = out
		}(i)
	}
	wg.Wait()

	for _, out := range results[1:] {
		assert.Equal(t, results[0], out)
	}
	assert.Len(t, r.cache, 1)
}

func TestImageIsBase64PNG(t *testing.T) {
	img, err := New(96).Image(decal.CrossMX)
	require.NoError(t, err)
	assert.Equal(t, MimeType, img.MimeType)

	raw, err := base64.StdEncoding.DecodeString(img.Data)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(raw))
	assert.NoError(t, err)
}
