package gateway

import (
	"context"
	"encoding/json"

	"decal-transfer-studio/internal/gemini"
)

type Action string

const (
	ActionAnalyzeHelmet1 Action = "analyzeHelmet1"
	ActionAnalyzeHelmet2 Action = "analyzeHelmet2"
	ActionGenerateImage  Action = "generateImage"
	ActionEditImage      Action = "editImage"
)

type Request struct {
	Action  Action          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

type Response struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

type ImagePayload struct {
	Image gemini.ImageInput `json:"image"`
}

type GeneratePayload struct {
	Prompt string `json:"prompt"`
}

type EditPayload struct {
	Image  gemini.ImageInput `json:"image"`
	Prompt string            `json:"prompt"`
	Model  string            `json:"model,omitempty"`
}

// Model is the upstream the gateway forwards to. *gemini.Client satisfies it.
type Model interface {
	AnalyzeDecal(ctx context.Context, img gemini.ImageInput) (string, error)
	ClassifyHelmet(ctx context.Context, img gemini.ImageInput) (string, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
	EditImage(ctx context.Context, img gemini.ImageInput, prompt string, model string) (string, error)
}

// Invoker performs one gateway action. Service calls in-process and
// RemoteClient goes through POST /api/generate.
type Invoker interface {
	Call(ctx context.Context, action Action, payload any) (string, error)
}
