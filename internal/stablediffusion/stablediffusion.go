package stablediffusion

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/occubias/occugen/internal/providers"
)

const (
	// ModelDir is the directory name images from this backend are stored under
	ModelDir = "stable-diffusion-3"

	DefaultURL   = "http://127.0.0.1:7860"
	text2imgPath = "/sdapi/v1/txt2img"
)

// StableDiffusion talks to a locally running web UI exposing the sdapi endpoints
type StableDiffusion struct {
	BaseURL    string
	HTTPClient *http.Client

	Steps    int
	Width    int
	Height   int
	CFGScale float64
}

// New returns a StableDiffusion backend pointed at SD_URL
func New() *StableDiffusion {
	baseURL := os.Getenv("SD_URL")
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &StableDiffusion{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Minute},
		Steps:      50,
		Width:      1024,
		Height:     1024,
		CFGScale:   7.0,
	}
}

type textToImageRequest struct {
	Prompt    string  `json:"prompt"`
	Steps     int     `json:"steps"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	CFGScale  float64 `json:"cfg_scale"`
	BatchSize int     `json:"batch_size"`
	NIter     int     `json:"n_iter"`
}

type textToImageResponse struct {
	Images []string `json:"images"`
	Info   string   `json:"info"`
}

// Generate renders req.N images in a single batch
func (s *StableDiffusion) Generate(ctx context.Context, req providers.Request) ([]providers.Image, error) {
	body, err := json.Marshal(textToImageRequest{
		Prompt:    req.Prompt,
		Steps:     s.Steps,
		Width:     s.Width,
		Height:    s.Height,
		CFGScale:  s.CFGScale,
		BatchSize: max(req.N, 1),
		NIter:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+text2imgPath, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=UTF-8")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d - %s", resp.StatusCode, string(b))
	}

	var response textToImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	if len(response.Images) == 0 {
		return nil, providers.ErrNoImages
	}

	images := make([]providers.Image, 0, len(response.Images))
	for i, encoded := range response.Images {
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return images, fmt.Errorf("failed to decode image %d: %w", i, err)
		}
		images = append(images, providers.Image{Data: data})
	}
	return images, nil
}
