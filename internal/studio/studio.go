// Package studio holds the decal transfer wizard: one Session per user with
// explicit state and one method per user event.
package studio

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"decal-transfer-studio/internal/gateway"
	"decal-transfer-studio/internal/gemini"
	"decal-transfer-studio/internal/placeholder"
)

// Strategy selects how a Single View is produced when no Helmet 2 photo was
// uploaded.
type Strategy string

const (
	// StrategyImagen renders a new helmet with the text-to-image model.
	StrategyImagen Strategy = "imagen"
	// StrategyPlaceholder edits a rendered silhouette with the edit model.
	StrategyPlaceholder Strategy = "placeholder"
)

func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(value))) {
	case "", StrategyImagen:
		return StrategyImagen, nil
	case StrategyPlaceholder:
		return StrategyPlaceholder, nil
	default:
		return "", fmt.Errorf("unknown helmet 2 strategy %q", value)
	}
}

type Options struct {
	Invoker      gateway.Invoker
	Placeholders *placeholder.Renderer
	Strategy     Strategy
	// EditModel is sent with every editImage call; empty lets the gateway
	// pick its default.
	EditModel string
	Logger    *slog.Logger
	Now       func() time.Time
}

type Studio struct {
	invoker      gateway.Invoker
	placeholders *placeholder.Renderer
	strategy     Strategy
	editModel    string
	logger       *slog.Logger
	now          func() time.Time
}

func New(opts Options) *Studio {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	strategy := opts.Strategy
	if strategy == "" {
		strategy = StrategyImagen
	}
	placeholders := opts.Placeholders
	if placeholders == nil && strategy == StrategyPlaceholder {
		placeholders = placeholder.New(placeholder.DefaultSize)
	}

	return &Studio{
		invoker:      opts.Invoker,
		placeholders: placeholders,
		strategy:     strategy,
		editModel:    strings.TrimSpace(opts.EditModel),
		logger:       logger,
		now:          now,
	}
}

func (s *Studio) Strategy() Strategy {
	return s.strategy
}

func (s *Studio) NewSession() *Session {
	return &Session{
		studio: s,
		st:     initialState(),
		cache:  make(map[string]string),
	}
}

func (s *Studio) editPayload(img gemini.ImageInput, prompt string) gateway.EditPayload {
	return gateway.EditPayload{Image: img, Prompt: prompt, Model: s.editModel}
}
