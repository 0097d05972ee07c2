package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/tbourn/go-social-posts/internal/config"
)

// ErrMissingAPIKey is returned by NewClient when no credential is configured.
var ErrMissingAPIKey = errors.New("API Key missing")

// generateContentAction is the provider action a model must support to be
// usable for caption generation.
const generateContentAction = "generateContent"

// Client calls the Gemini API through the genai SDK.
type Client struct {
	models *genai.Models
	model  string
}

// NewClient builds a Client for cfg. It performs no network I/O.
func NewClient(ctx context.Context, cfg config.GenAIConfig) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrMissingAPIKey
	}
	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &Client{models: c.Models, model: cfg.Model}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// GenerateText sends a text-only prompt and returns the concatenated text
// parts of the first candidate.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, modeText, genai.Text(prompt))
}

// GenerateVision sends prompt together with an inline image.
func (c *Client) GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(image, mimeType),
	}
	return c.generate(ctx, modeVision, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)})
}

func (c *Client) generate(ctx context.Context, mode string, contents []*genai.Content) (string, error) {
	ctx, span := otel.Tracer("llm/Client").Start(ctx, "GenerateContent",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("genai.model", c.model),
			attribute.String("genai.mode", mode),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, contents, nil)
	observe(mode, start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content")
		return "", err
	}
	text := resp.Text()
	span.SetAttributes(attribute.Int("genai.response_bytes", len(text)))
	return text, nil
}

// ModelInfo describes a model visible to the configured credential.
type ModelInfo struct {
	Name             string
	DisplayName      string
	SupportedActions []string
}

// ListModels returns the models that support content generation.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	ctx, span := otel.Tracer("llm/Client").Start(ctx, "ListModels")
	defer span.End()

	var out []ModelInfo
	for m, err := range c.models.All(ctx) {
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if !supports(m.SupportedActions, generateContentAction) {
			continue
		}
		out = append(out, ModelInfo{
			Name:             m.Name,
			DisplayName:      m.DisplayName,
			SupportedActions: m.SupportedActions,
		})
	}
	return out, nil
}

func supports(actions []string, want string) bool {
	for _, a := range actions {
		if a == want {
			return true
		}
	}
	return false
}
