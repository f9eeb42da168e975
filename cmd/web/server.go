package main

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"decal-transfer-studio/internal/decal"
	"decal-transfer-studio/internal/gateway"
	"decal-transfer-studio/internal/gemini"
	"decal-transfer-studio/internal/logging"
	"decal-transfer-studio/internal/placeholder"
	"decal-transfer-studio/internal/studio"
)

const requestIDHeader = "X-Request-ID"

type server struct {
	gateway        *gateway.Service
	placeholders   *placeholder.Renderer
	maxUploadBytes int64
	requestTimeout time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

type apiError struct {
	Error string `json:"error"`
}

type downloadRequest struct {
	Image string        `json:"image"`
	Tab   studio.Tab    `json:"tab"`
	Style decal.StyleID `json:"style,omitempty"`
}

type promptRequest struct {
	// Text, when set, is decoded and replaces Fields.
	Text           string           `json:"text,omitempty"`
	Fields         decal.Prompt     `json:"fields"`
	Language       decal.Language   `json:"language"`
	HelmetType     decal.HelmetType `json:"helmetType,omitempty"`
	PreserveFinish bool             `json:"preserveFinish"`
	AvoidZones     bool             `json:"avoidZones"`
	PromptTab      studio.PromptTab `json:"promptTab,omitempty"`
	Style          decal.StyleID    `json:"style,omitempty"`
	StyleStrength  *int             `json:"styleStrength,omitempty"`
	StyleFinish    bool             `json:"styleFinish"`
}

// promptResponse carries both prompt encodings plus the instructions the
// page sends with each generation action.
type promptResponse struct {
	Fields    decal.Prompt `json:"fields"`
	Simple    string       `json:"simple"`
	Pro       string       `json:"pro,omitempty"`
	Imagen    string       `json:"imagen,omitempty"`
	Edit      string       `json:"edit,omitempty"`
	FullView  string       `json:"fullView"`
	StyleText string       `json:"styleText,omitempty"`
}

func (s *server) routes(static fs.FS) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/generate", s.withTimeout(s.gateway.Handler(s.maxUploadBytes)))
	mux.HandleFunc("/api/download", s.handleDownload)
	mux.HandleFunc("/api/placeholder", s.handlePlaceholder)
	mux.HandleFunc("/api/prompt", s.handlePrompt)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("/", http.FileServer(http.FS(static)))
	return withLogging(mux, s.logger)
}

func (s *server) withTimeout(next http.Handler) http.Handler {
	if s.requestTimeout <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// handleDownload turns a result data URL into a PNG attachment named
// {kind}_{timestamp}.png.
func (s *server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, apiError{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid request body"})
		return
	}

	var kind string
	switch req.Tab {
	case studio.TabSingle:
		kind = decal.KindSingleView
	case studio.TabFull:
		kind = decal.KindFullView
	case studio.TabStyle:
		if !req.Style.Valid() {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid style"})
			return
		}
		kind = decal.StyleKind(req.Style)
	default:
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid tab"})
		return
	}

	img, err := gemini.ParseDataURL(req.Image, "image/png")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid image"})
		return
	}
	raw, err := img.PNG()
	if err != nil || len(raw) == 0 {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid image"})
		return
	}

	name := decal.DownloadName(kind, s.now())
	w.Header().Set("content-type", "image/png")
	w.Header().Set("content-disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("content-length", strconv.Itoa(len(raw)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *server) handlePlaceholder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}
	t, ok := decal.ParseHelmetType(r.URL.Query().Get("type"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid helmet type"})
		return
	}

	png, err := s.placeholders.PNG(t)
	if err != nil {
		logging.FromContext(r.Context(), s.logger).Error("placeholder render failed", "type", t, "err", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "render failed"})
		return
	}
	w.Header().Set("content-type", "image/png")
	w.Header().Set("cache-control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// handlePrompt renders the simple and pro prompts for a set of fields.
func (s *server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid request body"})
		return
	}

	lang := decal.English
	if l, ok := decal.ParseLanguage(string(req.Language)); ok {
		lang = l
	}
	fields := req.Fields
	if strings.TrimSpace(req.Text) != "" {
		fields = decal.Decode(req.Text)
	}

	resp := promptResponse{
		Fields: fields,
		Simple: decal.Encode(fields, lang, req.PreserveFinish, req.AvoidZones),
	}
	if req.HelmetType != "" {
		t, ok := decal.ParseHelmetType(string(req.HelmetType))
		if !ok {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid helmet type"})
			return
		}
		resp.Pro = decal.BuildProPrompt(fields, t, lang, req.PreserveFinish)

		brief := resp.Simple
		if req.PromptTab == studio.PromptPro {
			brief = resp.Pro
		}
		resp.Imagen = decal.ImagenPrompt(t, lang, brief)
		resp.Edit = decal.EditPrompt(t, lang, brief)
		resp.FullView = decal.FullViewPrompt(brief)
	} else {
		resp.FullView = decal.FullViewPrompt(resp.Simple)
	}
	if req.Style != "" {
		strength := decal.DefaultStyleStrength
		if req.StyleStrength != nil {
			strength = *req.StyleStrength
		}
		resp.StyleText = decal.StylePrompt(req.Style, decal.ClampStrength(strength), req.StyleFinish)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gateway.WriteJSON(w, status, v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withLogging(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(logging.WithRequestID(r.Context(), id)))

		logger.Info("http", "method", r.Method, "path", r.URL.Path, "status", rec.status, "request_id", id, "dur_ms", time.Since(start).Milliseconds())
	})
}
