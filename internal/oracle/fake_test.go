package oracle

import (
	"context"
	"sync"
)

// fakeGenerator records requests and replies with canned values.
type fakeGenerator struct {
	mu       sync.Mutex
	text     string
	textErr  error
	blobs    []Blob
	imageErr error

	textReqs  []TextRequest
	imageReqs []ImageRequest
}

func (f *fakeGenerator) GenerateText(_ context.Context, req TextRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textReqs = append(f.textReqs, req)
	return f.text, f.textErr
}

func (f *fakeGenerator) GenerateImage(_ context.Context, req ImageRequest) ([]Blob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageReqs = append(f.imageReqs, req)
	return f.blobs, f.imageErr
}
