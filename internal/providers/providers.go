package providers

import (
	"context"
	"errors"
)

var (
	// ErrRateLimited marks a request the backend refused because of rate limits
	ErrRateLimited = errors.New("rate limited")
	// ErrNoImages means the backend answered without any image
	ErrNoImages = errors.New("no images returned")
)

// Request describes one prompt sent to an image backend
type Request struct {
	Model  string
	Prompt string
	N      int // images wanted for this prompt
}

// Image is a generated image. Backends fill either Data or URL.
type Image struct {
	Data []byte
	URL  string
}

// Generator defines the interface for an image generation backend.
// On a partial failure the images produced so far are returned together with the error.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]Image, error)
}
