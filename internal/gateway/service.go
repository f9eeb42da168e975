package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"decal-transfer-studio/internal/gemini"
	"decal-transfer-studio/internal/logging"
)

type Options struct {
	Model  Model
	Logger *slog.Logger
	// EditModels lists the models editImage may select. The first entry is
	// used when the payload names none.
	EditModels []string
}

type Service struct {
	model      Model
	logger     *slog.Logger
	editModels []string
}

func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	editModels := make([]string, 0, len(opts.EditModels))
	for _, m := range opts.EditModels {
		if m = strings.TrimSpace(m); m != "" {
			editModels = append(editModels, m)
		}
	}
	if len(editModels) == 0 {
		editModels = []string{gemini.DefaultEditModel}
	}

	return &Service{
		model:      opts.Model,
		logger:     logger,
		editModels: editModels,
	}
}

// Dispatch performs exactly one upstream call for req. Errors are
// *StatusError values or plain upstream errors (500).
func (s *Service) Dispatch(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	result, err := s.dispatch(ctx, req)
	logger := logging.FromContext(ctx, s.logger)
	if err != nil {
		logger.Error("gateway action failed", "action", req.Action, "status", HTTPStatus(err), "err", err, "dur_ms", time.Since(start).Milliseconds())
		return "", err
	}
	logger.Info("gateway action", "action", req.Action, "result_len", len(result), "dur_ms", time.Since(start).Milliseconds())
	return result, nil
}

func (s *Service) dispatch(ctx context.Context, req Request) (string, error) {
	if s.model == nil {
		return "", errors.New("gateway model is nil")
	}

	switch req.Action {
	case ActionAnalyzeHelmet1, ActionAnalyzeHelmet2:
		var p ImagePayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return "", err
		}
		if strings.TrimSpace(p.Image.Data) == "" {
			return "", badRequest(errors.New("missing image"))
		}
		if req.Action == ActionAnalyzeHelmet1 {
			return upstream(s.model.AnalyzeDecal(ctx, p.Image))
		}
		return upstream(s.model.ClassifyHelmet(ctx, p.Image))

	case ActionGenerateImage:
		var p GeneratePayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return "", err
		}
		if strings.TrimSpace(p.Prompt) == "" {
			return "", badRequest(errors.New("missing prompt"))
		}
		return upstream(s.model.GenerateImage(ctx, p.Prompt))

	case ActionEditImage:
		var p EditPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return "", err
		}
		if strings.TrimSpace(p.Image.Data) == "" {
			return "", badRequest(errors.New("missing image"))
		}
		model, err := s.editModel(p.Model)
		if err != nil {
			return "", err
		}
		return upstream(s.model.EditImage(ctx, p.Image, p.Prompt, model))

	default:
		return "", badRequest(ErrInvalidAction)
	}
}

func (s *Service) editModel(requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return s.editModels[0], nil
	}
	for _, m := range s.editModels {
		if m == requested {
			return m, nil
		}
	}
	return "", badRequest(fmt.Errorf("unsupported model %q", requested))
}

// Call implements Invoker in-process. A rate-limited upstream surfaces as
// ErrRateLimited, matching what RemoteClient reports.
func (s *Service) Call(ctx context.Context, action Action, payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	result, err := s.Dispatch(ctx, Request{Action: action, Payload: raw})
	if err != nil && HTTPStatus(err) == http.StatusTooManyRequests {
		return "", &StatusError{Status: http.StatusTooManyRequests, Err: ErrRateLimited}
	}
	return result, err
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return badRequest(errors.New("missing payload"))
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return badRequest(fmt.Errorf("invalid payload: %w", err))
	}
	return nil
}

func upstream(result string, err error) (string, error) {
	if err == nil {
		return result, nil
	}
	if gemini.StatusCode(err) == http.StatusTooManyRequests {
		return "", &StatusError{Status: http.StatusTooManyRequests, Err: err}
	}
	return "", err
}
