package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoders for inline payloads
	"image/jpeg"
	_ "image/png"
	"log/slog"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/starford/kondate/internal/models"
)

// Defaults used when no Option overrides them.
const (
	DefaultTextModel  = "gemini-2.5-flash"
	DefaultImageModel = "gemini-2.5-flash-image"
	DefaultCuisine    = "japanese household"
)

// Option configures the Client.
type Option func(*Client)

// WithTextModel overrides the model used for suggestions and details.
func WithTextModel(model string) Option {
	return func(c *Client) { c.textModel = model }
}

// WithImageModel overrides the model used for thumbnails.
func WithImageModel(model string) Option {
	return func(c *Client) { c.imageModel = model }
}

// WithLanguage sets the language every text reply must be written in.
func WithLanguage(tag language.Tag) Option {
	return func(c *Client) { c.language = LanguageName(tag) }
}

// WithCuisine sets the kind of recipes suggestions are drawn from.
func WithCuisine(cuisine string) Option {
	return func(c *Client) { c.cuisine = cuisine }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client builds recipe prompts and decodes the replies. It holds no
// mutable state after construction.
type Client struct {
	gen        Generator
	textModel  string
	imageModel string
	language   string
	cuisine    string
	logger     *slog.Logger
}

// NewClient creates a Client on top of a Generator.
func NewClient(gen Generator, opts ...Option) *Client {
	c := &Client{
		gen:        gen,
		textModel:  DefaultTextModel,
		imageModel: DefaultImageModel,
		language:   LanguageName(language.Japanese),
		cuisine:    DefaultCuisine,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// LanguageName returns the English name of a language tag ("Japanese" for ja).
func LanguageName(tag language.Tag) string {
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return tag.String()
}

// SuggestRecipes asks for count recipe overviews using the given
// ingredients. Failures are returned to the caller.
func (c *Client) SuggestRecipes(ctx context.Context, ingredients []string, count int) ([]models.RecipeOverview, error) {
	text, err := c.gen.GenerateText(ctx, TextRequest{
		Model:  c.textModel,
		Prompt: suggestPrompt(c.cuisine, count, ingredients),
		System: languageInstruction(c.language),
		JSON:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("oracle: suggest recipes: %w", asOracleErr(err))
	}
	overviews, err := decodeOverviews(text)
	if err != nil {
		return nil, fmt.Errorf("oracle: suggest recipes: %w", err)
	}
	if count > 0 && len(overviews) > count {
		overviews = overviews[:count]
	}
	return overviews, nil
}

// FetchRecipeDetail asks for the full recipe called name. When the service
// itself fails the EmptyRecipe sentinel is returned with a nil error; a
// reply that is not a JSON object yields ErrParse.
func (c *Client) FetchRecipeDetail(ctx context.Context, name string) (*models.Document, error) {
	text, err := c.gen.GenerateText(ctx, TextRequest{
		Model:  c.textModel,
		Prompt: detailPrompt(name),
		System: detailInstruction(c.language),
		JSON:   true,
	})
	if err != nil {
		if errors.Is(err, ErrParse) {
			return nil, fmt.Errorf("oracle: fetch detail: %w", err)
		}
		c.logger.Warn("oracle: detail request failed, returning empty recipe",
			slog.String("name", name),
			slog.String("error", err.Error()))
		return models.EmptyRecipe(), nil
	}
	doc, err := decodeDetail(text)
	if err != nil {
		return nil, fmt.Errorf("oracle: fetch detail: %w", err)
	}
	return doc, nil
}

// FetchRecipeImage asks the image model for a picture of name and returns
// the first inline payload re-encoded as JPEG.
func (c *Client) FetchRecipeImage(ctx context.Context, name string) ([]byte, error) {
	blobs, err := c.gen.GenerateImage(ctx, ImageRequest{
		Model:  c.imageModel,
		Prompt: imagePrompt(name),
	})
	if err != nil {
		return nil, fmt.Errorf("oracle: fetch image: %w", asOracleErr(err))
	}
	var payload []byte
	for _, b := range blobs {
		if len(b.Data) > 0 {
			payload = b.Data
			break
		}
	}
	if payload == nil {
		return nil, fmt.Errorf("oracle: fetch image: %w: no inline image data", ErrParse)
	}
	img, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("oracle: fetch image: %w: %v", ErrParse, err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("oracle: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// asOracleErr makes sure transport errors carry ErrOracle (or ErrParse).
func asOracleErr(err error) error {
	if errors.Is(err, ErrOracle) || errors.Is(err, ErrParse) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrOracle, err)
}
