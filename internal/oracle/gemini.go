package oracle

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"
)

// GeminiConfig configures the Gemini transport.
type GeminiConfig struct {
	APIKey string
	// BaseURL overrides the API endpoint; empty uses the SDK default.
	BaseURL string
	Timeout time.Duration
}

// Gemini implements Generator with the Gemini API.
type Gemini struct {
	models *genai.Models
}

// Verify *Gemini satisfies Generator at compile time.
var _ Generator = (*Gemini)(nil)

// NewGemini creates a Gemini transport. The underlying client is safe for
// concurrent use and is meant to be built once per process.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("oracle: new gemini client: %w", err)
	}
	return &Gemini{models: client.Models}, nil
}

// GenerateText runs a text completion with thinking disabled.
func (g *Gemini) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("%w: generate %s: %w", ErrOracle, req.Model, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: %s returned no text", ErrParse, req.Model)
	}
	return text, nil
}

// GenerateImage runs an image completion and returns every inline payload
// of the first candidate, in order.
func (g *Gemini) GenerateImage(ctx context.Context, req ImageRequest) ([]Blob, error) {
	resp, err := g.models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: generate %s: %w", ErrOracle, req.Model, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: %s returned no candidates", ErrParse, req.Model)
	}
	var blobs []Blob
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.InlineData == nil {
			continue
		}
		blobs = append(blobs, Blob{MIMEType: part.InlineData.MIMEType, Data: part.InlineData.Data})
	}
	return blobs, nil
}
