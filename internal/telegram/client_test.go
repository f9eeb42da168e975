package telegram

import (
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitByBytesKeepsRunesWhole(t *testing.T) {
	text := strings.Repeat("Mũ bảo hiểm ", 50)
	parts := splitByBytes(text, 64)

	require.Greater(t, len(parts), 1)
	assert.Equal(t, text, strings.Join(parts, ""))
	for _, p := range parts {
		assert.LessOrEqual(t, len(p), 64)
		assert.True(t, utf8.ValidString(p))
	}
}

func TestSplitByBytesShortText(t *testing.T) {
	assert.Equal(t, []string{"hi"}, splitByBytes("hi", 10))
}

func TestTruncateByBytes(t *testing.T) {
	assert.Equal(t, "abc", truncateByBytes("abc", 10))

	out := truncateByBytes("ràng buộc", 4)
	assert.True(t, utf8.ValidString(out))
	assert.LessOrEqual(t, len(out), 4)
	assert.Equal(t, "ràn", out)
}

func TestDetectMime(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000000000")

	assert.Equal(t, "image/webp", detectMime("image/webp; charset=binary", png))
	assert.Equal(t, "image/png", detectMime("application/octet-stream", png))
	assert.Equal(t, "image/png", detectMime("", png))
	assert.Equal(t, "image/jpeg", detectMime("", nil))
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(Options{Token: " ", HTTPClient: http.DefaultClient})
	assert.Error(t, err)

	_, err = New(Options{Token: "123:abc"})
	assert.Error(t, err)
}
