// Package oracle talks to the generative model that suggests recipes,
// writes recipe details and draws thumbnails.
package oracle

import (
	"context"
	"errors"
)

var (
	// ErrOracle marks failures of the generative service itself:
	// unreachable, rate limited, rejected request.
	ErrOracle = errors.New("oracle unavailable")
	// ErrParse marks replies that are not JSON of the expected shape.
	ErrParse = errors.New("oracle reply unparseable")
)

// TextRequest is a single text completion.
type TextRequest struct {
	Model  string
	Prompt string
	// System is the system instruction; empty means none.
	System string
	// JSON asks the model to reply with application/json.
	JSON bool
}

// ImageRequest is a single image completion.
type ImageRequest struct {
	Model  string
	Prompt string
}

// Blob is an inline binary payload from a model reply.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Generator is the transport to a generative model. Implementations must
// wrap service failures in ErrOracle.
type Generator interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
	GenerateImage(ctx context.Context, req ImageRequest) ([]Blob, error)
}
