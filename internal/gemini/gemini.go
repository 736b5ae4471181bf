package gemini

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-1.5-flash"

const systemInstruction = "You correct German grammar. Reply with exactly one word."

// Gemini is a text generator backed by Google Gemini. The client is created on
// first use and shared by later calls until Close.
type Gemini struct {
	Model       string
	Temperature float32

	mu     sync.Mutex
	client *genai.Client
}

// New returns a new Gemini text generator
func New() *Gemini {
	return &Gemini{Model: DefaultModel}
}

// Generate sends the prompt to Gemini and returns the first text part of the answer
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return "", err
	}

	model := client.GenerativeModel(g.Model)
	g.configure(model)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return firstText(resp)
}

// Close releases the underlying client, if one was created
func (g *Gemini) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}

func (g *Gemini) getClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}
	g.client = client
	return client, nil
}

// configure asks for a short plain-text answer from a single candidate
func (g *Gemini) configure(model *genai.GenerativeModel) {
	model.SetTemperature(g.Temperature)
	model.SetCandidateCount(1)
	model.SetMaxOutputTokens(16)
	model.ResponseMIMEType = "text/plain"
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemInstruction))
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", fmt.Errorf("unexpected response format from Gemini")
}
