package imagen

import (
	"context"
	"fmt"
	"os"

	"github.com/occubias/occugen/internal/providers"
	"google.golang.org/genai"
)

const DefaultModel = "imagen-3.0-generate-002"

// ImageModels is the part of the genai client the backend uses
type ImageModels interface {
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Imagen generates images with Google Imagen through the Gemini API
type Imagen struct {
	models ImageModels
}

// New creates an Imagen backend authenticated with GEMINI_API_KEY
func New(ctx context.Context) (*Imagen, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Imagen{models: client.Models}, nil
}

// NewWithModels wraps an existing ImageModels implementation
func NewWithModels(models ImageModels) *Imagen {
	return &Imagen{models: models}
}

func (i *Imagen) Generate(ctx context.Context, req providers.Request) ([]providers.Image, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	resp, err := i.models.GenerateImages(ctx, model, req.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: int32(max(req.N, 1)),
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate images: %w", err)
	}

	var images []providers.Image
	for _, generated := range resp.GeneratedImages {
		if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
			continue
		}
		images = append(images, providers.Image{Data: generated.Image.ImageBytes})
	}
	if len(images) == 0 {
		return nil, providers.ErrNoImages
	}
	return images, nil
}
