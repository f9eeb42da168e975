package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"decal-transfer-studio/internal/decal"
	"decal-transfer-studio/internal/gateway"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const fieldsYAML = `theme: Tiger
motifs: stripes
palette: "#FF6600, #000000"
typography: None
`

func TestEncodeFromStdin(t *testing.T) {
	out, err := run(t, fieldsYAML, "encode", "--avoid-zones=false")
	require.NoError(t, err)

	want := decal.Encode(decal.Prompt{Theme: "Tiger", Motifs: "stripes", Palette: "#FF6600, #000000", Typography: "None"}, decal.English, true, false)
	assert.Equal(t, want+"\n", out)
}

func TestEncodeDecodeThroughFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "fields.yaml")
	require.NoError(t, os.WriteFile(in, []byte(fieldsYAML), 0o644))

	encoded, err := run(t, "", "encode", "--lang", "vi", in)
	require.NoError(t, err)

	decoded, err := run(t, encoded, "decode")
	require.NoError(t, err)

	var got decal.Prompt
	require.NoError(t, yaml.Unmarshal([]byte(decoded), &got))
	want := decal.Prompt{Theme: "Tiger", Motifs: "stripes", Palette: "#FF6600, #000000", Typography: "None"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded fields mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeRejectsBadInput(t *testing.T) {
	_, err := run(t, fieldsYAML, "encode", "--lang", "fr")
	assert.ErrorContains(t, err, "unknown language")

	_, err = run(t, "theme: [unterminated", "encode")
	assert.ErrorContains(t, err, "parse fields")
}

func TestPro(t *testing.T) {
	out, err := run(t, fieldsYAML, "pro", "--type", "mx")
	require.NoError(t, err)

	p := decal.Prompt{Theme: "Tiger", Motifs: "stripes", Palette: "#FF6600, #000000", Typography: "None"}
	assert.Equal(t, decal.BuildProPrompt(p, decal.CrossMX, decal.English, true)+"\n", out)

	_, err = run(t, fieldsYAML, "pro", "--type", "bike")
	assert.ErrorContains(t, err, "unknown helmet type")
}

func TestHex(t *testing.T) {
	out, err := run(t, "", "hex", "#FF6600", "and", "#abc")
	require.NoError(t, err)

	var got hexReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"#FF6600", "#abc"}, got.Codes)
	assert.Equal(t, decal.PlanPalette("#FF6600 #abc"), got.Plan)
}

func TestPlaceholderWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mx.png")

	out, err := run(t, "", "placeholder", "--type", "cross-mx", "--size", "96", "-o", path)
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("\x89PNG")))
}

func TestCallGenerateImage(t *testing.T) {
	var got gateway.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		gateway.WriteJSON(w, http.StatusOK, gateway.Response{Result: "data:image/png;base64,R0VO"})
	}))
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "out.png")
	out, err := run(t, "", "call", "generateImage", "--gateway", srv.URL, "--prompt", "a helmet", "-o", path)
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)
	assert.Equal(t, gateway.ActionGenerateImage, got.Action)
	assert.JSONEq(t, `{"prompt":"a helmet"}`, string(got.Payload))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "GEN", string(raw))
}

func TestCallSurfacesGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gateway.WriteJSON(w, http.StatusTooManyRequests, gateway.Response{Error: gateway.RateLimitMessage})
	}))
	t.Cleanup(srv.Close)

	_, err := run(t, "", "call", "generateImage", "--gateway", srv.URL, "--prompt", "x")
	assert.ErrorContains(t, err, "exceeded the API request limit")
}

func TestCallValidatesArguments(t *testing.T) {
	t.Setenv("GATEWAY_URL", "")

	_, err := run(t, "", "call", "generateImage", "--prompt", "x")
	assert.ErrorContains(t, err, "GATEWAY_URL")

	_, err = run(t, "", "call", "generateImage", "--gateway", "http://127.0.0.1:1")
	assert.ErrorContains(t, err, "--prompt is required")

	_, err = run(t, "", "call", "analyzeHelmet1", "--gateway", "http://127.0.0.1:1")
	assert.ErrorContains(t, err, "--image is required")

	_, err = run(t, "", "call", "explode", "--gateway", "http://127.0.0.1:1")
	assert.ErrorIs(t, err, gateway.ErrInvalidAction)

	notImage := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notImage, []byte("plain text"), 0o644))
	_, err = run(t, "", "call", "editImage", "--gateway", "http://127.0.0.1:1", "--image", notImage)
	assert.ErrorContains(t, err, "is not an image")
}
