package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decal-transfer-studio/internal/decal"
	"decal-transfer-studio/internal/gateway"
	"decal-transfer-studio/internal/gemini"
	"decal-transfer-studio/internal/placeholder"
)

type stubModel struct{}

func (stubModel) AnalyzeDecal(context.Context, gemini.ImageInput) (string, error) {
	return `{"helmetType":"fullface","decalPromptEn":{"theme":"Tiger"}}`, nil
}

func (stubModel) ClassifyHelmet(context.Context, gemini.ImageInput) (string, error) {
	return `{"helmetType":"cross-mx"}`, nil
}

func (stubModel) GenerateImage(_ context.Context, prompt string) (string, error) {
	return "data:image/png;base64,R0VO", nil
}

func (stubModel) EditImage(context.Context, gemini.ImageInput, string, string) (string, error) {
	return "data:image/png;base64,RURJVA==", nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := &server{
		gateway:        gateway.New(gateway.Options{Model: stubModel{}, Logger: logger}),
		placeholders:   placeholder.New(128),
		maxUploadBytes: 1 << 20,
		requestTimeout: time.Minute,
		logger:         logger,
		now:            func() time.Time { return time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC) },
	}
	static := fstest.MapFS{"index.html": {Data: []byte("<h1>studio</h1>")}}
	srv := httptest.NewServer(s.routes(static))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestGenerateRoute(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/generate", map[string]any{
		"action":  "generateImage",
		"payload": map[string]string{"prompt": "a helmet"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out gateway.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "data:image/png;base64,R0VO", out.Result)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, "req-1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-1", resp.Header.Get(requestIDHeader))
}

func TestDownload(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/download", downloadRequest{
		Image: "data:image/png;base64,RURJVA==",
		Tab:   "style",
		Style: decal.StyleNeon,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="style_neon_20260102_0304.png"`, resp.Header.Get("content-disposition"))
	assert.Equal(t, "image/png", resp.Header.Get("content-type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "EDIT", string(body))
}

func TestDownloadReencodesJPEG(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 5, 3)), nil))
	resp := postJSON(t, srv.URL+"/api/download", downloadRequest{
		Image: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Tab:   "single",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="single_view_20260102_0304.png"`, resp.Header.Get("content-disposition"))
	assert.Equal(t, "image/png", resp.Header.Get("content-type"))

	decoded, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 5, 3), decoded.Bounds())
}

func TestDownloadRejectsBadInput(t *testing.T) {
	srv := newTestServer(t)

	cases := []downloadRequest{
		{Image: "data:image/png;base64,RURJVA==", Tab: "gallery"},
		{Image: "data:image/png;base64,RURJVA==", Tab: "style", Style: "oil"},
		{Image: "", Tab: "single"},
		{Image: "data:image/png;base64,%%%", Tab: "full"},
	}
	for _, c := range cases {
		resp := postJSON(t, srv.URL+"/api/download", c)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, c)
	}

	resp, err := http.Get(srv.URL + "/api/download")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestPlaceholder(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/placeholder?type=mx")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("content-type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))

	bad, err := http.Get(srv.URL + "/api/placeholder?type=bike")
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestPromptRoute(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/prompt", promptRequest{
		Fields:         decal.Prompt{Theme: "Tiger", Palette: "#FF6600"},
		Language:       decal.English,
		HelmetType:     decal.FullFace,
		PreserveFinish: true,
		AvoidZones:     false,
		PromptTab:      "pro",
		Style:          decal.StyleMarker,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out promptResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, decal.Encode(decal.Prompt{Theme: "Tiger", Palette: "#FF6600"}, decal.English, true, false), out.Simple)
	assert.NotEmpty(t, out.Pro)
	assert.Contains(t, out.Imagen, out.Pro)
	assert.Contains(t, out.Edit, out.Pro)
	assert.Contains(t, out.FullView, out.Pro)
	assert.Equal(t, decal.StylePrompt(decal.StyleMarker, decal.DefaultStyleStrength, false), out.StyleText)
}

func TestPromptRouteStyleStrength(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/prompt", map[string]any{"style": "watercolor", "styleStrength": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var zero promptResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&zero))
	assert.Equal(t, decal.StylePrompt(decal.StyleWatercolor, 0, false), zero.StyleText)
	assert.Contains(t, zero.StyleText, "Strength: 0%")

	resp = postJSON(t, srv.URL+"/api/prompt", map[string]any{"style": "watercolor"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var absent promptResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&absent))
	assert.Equal(t, decal.StylePrompt(decal.StyleWatercolor, decal.DefaultStyleStrength, false), absent.StyleText)
}

func TestPromptRouteDecodesText(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/prompt", promptRequest{Text: "[Decal Theme]: Dragon\nnoise\n[Motifs]: scales"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out promptResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Dragon", out.Fields.Theme)
	assert.Equal(t, "scales", out.Fields.Motifs)
	assert.Empty(t, out.Pro)
	assert.False(t, strings.Contains(out.Simple, "noise"))

	bad := postJSON(t, srv.URL+"/api/prompt", promptRequest{HelmetType: "bike"})
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestStaticPage(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "studio")
}

func TestEmbeddedPageStyleControls(t *testing.T) {
	page, err := staticFS.ReadFile("static/index.html")
	require.NoError(t, err)
	html := string(page)

	assert.Contains(t, html, `id="lockSeed"`)
	assert.Contains(t, html, "${$(\"styleFinish\").checked}-${$(\"lockSeed\").checked}")
	assert.Contains(t, html, `id="single" disabled`)
	assert.Contains(t, html, `st.helmet1Status === "extracted"`)
}
