package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const (
	DefaultAnalysisModel = "gemini-2.5-flash"
	DefaultImageModel    = "imagen-4.0-generate-001"
	DefaultEditModel     = "gemini-2.5-flash-image"
)

const analyzeDecalInstruction = "Analyze the image of a motorcycle helmet. Extract the decal design into structured fields in English (en). For the 'palette' field, accurately identify the main colors and provide their HEX codes, listing the most prominent colors first. Provide up to 6 HEX codes. If there are fewer than 6 distinct colors, use neutral grays like #808080 or repeat the primary colors to fill the remaining slots. Also, classify the helmet type. Provide your response as a JSON object matching the requested schema. Ensure all fields are filled; use 'N/A' or 'None' if a feature is not present."

const classifyHelmetInstruction = "Classify the helmet type in the image. Respond with a JSON object matching the schema."

var helmetTypeEnum = []string{"half-face", "open-face", "fullface", "cross-mx"}

var (
	ErrNoImage = errors.New("the model did not return an image")
	ErrNoText  = errors.New("the model did not return any text")
)

type Options struct {
	APIKey        string
	BaseURL       string
	APIVersion    string
	HTTPClient    *http.Client
	Logger        *slog.Logger
	AnalysisModel string
	ImageModel    string
	EditModel     string
}

type Client struct {
	genai         *genai.Client
	logger        *slog.Logger
	analysisModel string
	imageModel    string
	editModel     string
}

func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini api key is empty")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	httpOpts := genai.HTTPOptions{
		APIVersion: strings.TrimSpace(opts.APIVersion),
	}
	if baseURL := strings.TrimSpace(opts.BaseURL); baseURL != "" {
		httpOpts.BaseURL = strings.TrimRight(baseURL, "/") + "/"
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  opts.HTTPClient,
		HTTPOptions: httpOpts,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		genai:         gc,
		logger:        logger,
		analysisModel: orDefault(opts.AnalysisModel, DefaultAnalysisModel),
		imageModel:    orDefault(opts.ImageModel, DefaultImageModel),
		editModel:     orDefault(opts.EditModel, DefaultEditModel),
	}, nil
}

func (c *Client) EditModel() string {
	return c.editModel
}

// AnalyzeDecal extracts the decal fields and helmet type of img and returns
// the model's JSON text unchanged.
func (c *Client) AnalyzeDecal(ctx context.Context, img ImageInput) (string, error) {
	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"helmetType": {Type: genai.TypeString, Enum: helmetTypeEnum, Description: "Classify the helmet type."},
			"decalPromptEn": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"theme":      {Type: genai.TypeString},
					"motifs":     {Type: genai.TypeString},
					"flow":       {Type: genai.TypeString},
					"palette":    {Type: genai.TypeString},
					"density":    {Type: genai.TypeString},
					"finish":     {Type: genai.TypeString},
					"typography": {Type: genai.TypeString},
					"mood":       {Type: genai.TypeString},
				},
			},
		},
	}
	return c.structured(ctx, img, analyzeDecalInstruction, schema)
}

// ClassifyHelmet returns a JSON object {"helmetType": ...} for img.
func (c *Client) ClassifyHelmet(ctx context.Context, img ImageInput) (string, error) {
	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"helmetType": {Type: genai.TypeString, Enum: helmetTypeEnum},
		},
	}
	return c.structured(ctx, img, classifyHelmetInstruction, schema)
}

func (c *Client) structured(ctx context.Context, img ImageInput, instruction string, schema *genai.Schema) (string, error) {
	imagePart, err := imagePart(img)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{imagePart, genai.NewPartFromText(instruction)}, genai.RoleUser),
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.analysisModel, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text, _ := extractParts(resp)
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

// GenerateImage renders one 1:1 JPEG from prompt and returns it as a data URL.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt is empty")
	}

	resp, err := c.genai.Models.GenerateImages(ctx, c.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
		AspectRatio:    "1:1",
	})
	if err != nil {
		return "", fmt.Errorf("generate images: %w", err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return "", errors.New("the model did not generate an image")
	}

	img := resp.GeneratedImages[0].Image
	c.logger.Debug("image generated", "model", c.imageModel, "bytes", len(img.ImageBytes))
	return DataURL("image/jpeg", base64.StdEncoding.EncodeToString(img.ImageBytes)), nil
}

// EditImage applies prompt to img and returns the first inline image of the
// reply as a data URL. An empty model selects the default edit model.
func (c *Client) EditImage(ctx context.Context, img ImageInput, prompt string, model string) (string, error) {
	imagePart, err := imagePart(img)
	if err != nil {
		return "", err
	}
	model = orDefault(model, c.editModel)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{imagePart, genai.NewPartFromText(prompt)}, genai.RoleUser),
	}

	resp, err := c.genai.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text, images := extractParts(resp)
	if len(images) == 0 {
		c.logger.Warn("edit returned no image", "model", model, "text_len", len(text))
		return "", ErrNoImage
	}
	return images[0], nil
}

func imagePart(img ImageInput) (*genai.Part, error) {
	raw, err := img.Bytes()
	if err != nil {
		return nil, err
	}
	mimeType := strings.TrimSpace(img.MimeType)
	if mimeType == "" {
		mimeType = http.DetectContentType(raw)
	}
	return genai.NewPartFromBytes(raw, mimeType), nil
}

func extractParts(resp *genai.GenerateContentResponse) (string, []string) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var textBuilder strings.Builder
	var images []string

	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil {
			continue
		}
		if p.Text != "" {
			textBuilder.WriteString(p.Text)
		}
		if p.InlineData != nil && len(p.InlineData.Data) > 0 && p.InlineData.MIMEType != "" {
			images = append(images, DataURL(p.InlineData.MIMEType, base64.StdEncoding.EncodeToString(p.InlineData.Data)))
		}
	}

	return textBuilder.String(), images
}

// StatusCode extracts the upstream HTTP status from err, or 0.
func StatusCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return 0
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
