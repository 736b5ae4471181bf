package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const DefaultModel = "llama3.1"

// Ollama is a text generator backed by a local Ollama server
type Ollama struct {
	BaseURL     string
	Model       string
	Temperature float64
	HTTPClient  *http.Client
}

// New returns a new Ollama text generator pointed at OLLAMA_URL
func New() *Ollama {
	ollamaURL := os.Getenv("OLLAMA_URL")
	if ollamaURL == "" {
		ollamaURL = "http://localhost:11434"
	}
	return &Ollama{
		BaseURL:    ollamaURL,
		Model:      DefaultModel,
		HTTPClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// Generate sends the prompt to the server without streaming
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	base, err := url.Parse(o.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid ollama url %q: %w", o.BaseURL, err)
	}
	client := api.NewClient(base, o.HTTPClient)

	stream := false
	req := &api.GenerateRequest{
		Model:  o.Model,
		Prompt: prompt,
		Stream: &stream,
		Options: map[string]any{
			"temperature": o.Temperature,
		},
	}

	var sb strings.Builder
	err = client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate: %w", err)
	}

	return sb.String(), nil
}
