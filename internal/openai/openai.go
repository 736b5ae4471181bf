package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/occubias/occugen/internal/providers"
)

// DefaultModel is the DALL·E model used when none is given
const DefaultModel = "dall-e-3"

// OpenAI generates images with the OpenAI images API
type OpenAI struct {
	BaseURL      string
	APIKey       string
	Organization string
	HTTPClient   *http.Client
	Backoff      providers.Backoff
}

// New returns a new OpenAI provider configured from the environment
func New() *OpenAI {
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	return &OpenAI{
		BaseURL:      baseURL,
		APIKey:       os.Getenv("OPENAI_API_KEY"),
		Organization: os.Getenv("OPENAI_ORGANIZATION"),
		HTTPClient:   &http.Client{Timeout: 2 * time.Minute},
		Backoff:      providers.DefaultBackoff(),
	}
}

type imageRequest struct {
	Prompt         string `json:"prompt"`
	Model          string `json:"model"`
	N              int    `json:"n"`
	Quality        string `json:"quality"`
	ResponseFormat string `json:"response_format"`
	Size           string `json:"size"`
	Style          string `json:"style"`
}

type imageResponse struct {
	Data []struct {
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
}

// Generate requests req.N images one at a time, since dall-e-3 only accepts n=1.
// Rate-limited requests are retried with exponential backoff. A failed image is
// logged and the remaining ones are still requested; the failures are returned
// joined together with the images that succeeded.
func (o *OpenAI) Generate(ctx context.Context, req providers.Request) ([]providers.Image, error) {
	if o.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	var images []providers.Image
	var errs []error
	for i := 0; i < max(req.N, 1); i++ {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		var resp *imageResponse
		err := o.Backoff.Do(ctx, func() error {
			var err error
			resp, err = o.generateOne(ctx, model, req.Prompt)
			return err
		})
		if err == nil && len(resp.Data) == 0 {
			err = providers.ErrNoImages
		}
		if err != nil {
			slog.Error("Failed to generate image", "prompt", req.Prompt, "image", i+1, "err", err)
			errs = append(errs, fmt.Errorf("image %d: %w", i+1, err))
			continue
		}

		slog.Info("Response for prompt", "prompt", req.Prompt, "url", resp.Data[0].URL, "revised_prompt", resp.Data[0].RevisedPrompt)
		images = append(images, providers.Image{URL: resp.Data[0].URL})
	}
	return images, errors.Join(errs...)
}

func (o *OpenAI) generateOne(ctx context.Context, model, prompt string) (*imageResponse, error) {
	requestBody, err := json.Marshal(imageRequest{
		Prompt:         prompt,
		Model:          model,
		N:              1,
		Quality:        "standard",
		ResponseFormat: "url",
		Size:           "1024x1024",
		Style:          "natural",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := o.BaseURL + "/v1/images/generations"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)
	if o.Organization != "" {
		req.Header.Set("OpenAI-Organization", o.Organization)
	}

	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: %s", providers.ErrRateLimited, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response imageResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	return &response, nil
}
