package midjourney

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
	"strings"
	"time"

	"github.com/occubias/occugen/internal/providers"
	"golang.org/x/time/rate"
)

// DefaultModel is the model directory name used for midjourney images
const DefaultModel = "midjourney-v6-1"

// GridSize is the number of cells in an imagine grid
const GridSize = 4

// Task states reported by the proxy
const (
	StatusSuccess = "SUCCESS"
	StatusFailure = "FAILURE"
)

var ErrTaskFailed = errors.New("midjourney task failed")

// Midjourney drives a midjourney proxy: imagine a grid, then upscale cells of it
type Midjourney struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Limiter    *rate.Limiter

	PollInterval time.Duration
	MaxPolls     int
}

// New returns a Midjourney client configured from MIDJOURNEY_API_URL and MIDJOURNEY_API_KEY
func New() *Midjourney {
	return &Midjourney{
		BaseURL:      strings.TrimSuffix(os.Getenv("MIDJOURNEY_API_URL"), "/"),
		APIKey:       os.Getenv("MIDJOURNEY_API_KEY"),
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		Limiter:      rate.NewLimiter(rate.Every(2*time.Second), 1),
		PollInterval: 5 * time.Second,
		MaxPolls:     120,
	}
}

type submitResponse struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
	Result      string `json:"result"`
}

// Task is the proxy's view of a submitted job
type Task struct {
	ID         string `json:"id"`
	Action     string `json:"action"`
	Status     string `json:"status"`
	Progress   string `json:"progress"`
	ImageURL   string `json:"imageUrl"`
	FailReason string `json:"failReason"`
}

// Generate imagines a grid for the prompt and upscales the first req.N cells
func (m *Midjourney) Generate(ctx context.Context, req providers.Request) ([]providers.Image, error) {
	if m.BaseURL == "" {
		return nil, fmt.Errorf("MIDJOURNEY_API_URL environment variable not set")
	}

	gridID, err := m.submit(ctx, "/mj/submit/imagine", map[string]any{"prompt": req.Prompt})
	if err != nil {
		return nil, fmt.Errorf("failed to submit imagine: %w", err)
	}
	if _, err := m.wait(ctx, gridID); err != nil {
		return nil, fmt.Errorf("failed to imagine %q: %w", req.Prompt, err)
	}

	n := min(max(req.N, 1), GridSize)
	var images []providers.Image
	for i := 1; i <= n; i++ {
		upscaleID, err := m.submit(ctx, "/mj/submit/change", map[string]any{
			"taskId": gridID,
			"action": "UPSCALE",
			"index":  i,
		})
		if err != nil {
			return images, fmt.Errorf("failed to upscale image %d: %w", i, err)
		}
		task, err := m.wait(ctx, upscaleID)
		if err != nil {
			return images, fmt.Errorf("failed to upscale image %d: %w", i, err)
		}
		images = append(images, providers.Image{URL: task.ImageURL})
	}
	return images, nil
}

// Fetch returns the current state of a task
func (m *Midjourney) Fetch(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := m.do(ctx, http.MethodGet, "/mj/task/"+id+"/fetch", nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (m *Midjourney) submit(ctx context.Context, path string, payload map[string]any) (string, error) {
	var resp submitResponse
	if err := m.do(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return "", err
	}
	if resp.Result == "" {
		return "", fmt.Errorf("proxy rejected submission: %d %s", resp.Code, resp.Description)
	}
	return resp.Result, nil
}

// wait polls a task until it succeeds, fails, or MaxPolls is exhausted
func (m *Midjourney) wait(ctx context.Context, id string) (*Task, error) {
	for poll := 0; poll < m.MaxPolls; poll++ {
		task, err := m.Fetch(ctx, id)
		if err != nil {
			return nil, err
		}

		switch task.Status {
		case StatusSuccess:
			return task, nil
		case StatusFailure:
			return nil, fmt.Errorf("%w: %s", ErrTaskFailed, task.FailReason)
		}
		slog.Debug("Waiting for midjourney task", "task", id, "status", task.Status, "progress", task.Progress)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.PollInterval):
		}
	}
	return nil, fmt.Errorf("task %s did not finish after %d polls", id, m.MaxPolls)
}

func (m *Midjourney) do(ctx context.Context, method, path string, payload any, out any) error {
	if m.Limiter != nil {
		if err := m.Limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.APIKey != "" {
		req.Header.Set("mj-api-secret", m.APIKey)
	}

	resp, err := m.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return providers.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}
