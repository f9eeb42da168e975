package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Options{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		APIVersion: "v1beta",
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return c
}

func TestEditImageReturnsFirstInlineImage(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)

		w.Header().Set("content-type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[
			{"text":"here you go"},
			{"inlineData":{"mimeType":"image/png","data":"aGVsbG8="}},
			{"inlineData":{"mimeType":"image/png","data":"d29ybGQ="}}
		]}}]}`)
	})

	got, err := c.EditImage(context.Background(), ImageInput{MimeType: "image/jpeg", Data: "aGVsbWV0"}, "apply decal", "")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", got)
	assert.True(t, strings.HasSuffix(gotPath, "models/"+DefaultEditModel+":generateContent"), gotPath)
	assert.NotNil(t, gotBody["contents"])
}

func TestEditImageWithoutImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"I cannot do that"}]}}]}`)
	})

	_, err := c.EditImage(context.Background(), ImageInput{MimeType: "image/jpeg", Data: "aGVsbWV0"}, "apply decal", "custom-model")
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestAnalyzeDecalReturnsJSONText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/"+DefaultAnalysisModel+":generateContent"), r.URL.Path)
		w.Header().Set("content-type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"helmetType\":\"fullface\"}"}]}}]}`)
	})

	got, err := c.AnalyzeDecal(context.Background(), ImageInput{MimeType: "image/jpeg", Data: "aGVsbWV0"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"helmetType":"fullface"}`, got)
}

func TestUpstreamRateLimitStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`)
	})

	_, err := c.ClassifyHelmet(context.Background(), ImageInput{MimeType: "image/jpeg", Data: "aGVsbWV0"})
	require.Error(t, err)
	assert.Equal(t, http.StatusTooManyRequests, StatusCode(err))
}

func TestInvalidImageData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.EditImage(context.Background(), ImageInput{MimeType: "image/png", Data: "!!!"}, "x", "")
	assert.Error(t, err)
}

func TestParseDataURL(t *testing.T) {
	img, err := ParseDataURL("data:image/png;base64,aGVsbG8=", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, ImageInput{MimeType: "image/png", Data: "aGVsbG8="}, img)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", img.DataURL())

	img, err = ParseDataURL("aGVsbG8=", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MimeType)

	_, err = ParseDataURL("data:image/png;base64,", "image/jpeg")
	assert.Error(t, err)

	_, err = ParseDataURL("", "image/jpeg")
	assert.Error(t, err)
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.Error(t, err)
}
