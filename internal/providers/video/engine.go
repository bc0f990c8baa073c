package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Engine talks to an external generation engine over JSON/HTTP. The
// engine accepts a job and reports integer progress until the asset urls
// become available.
type Engine struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// EngineOptions configures the engine client.
type EngineOptions struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewEngine creates an engine client.
func NewEngine(opts EngineOptions) (*Engine, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("engine: base url is required")
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Engine{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		model:      opts.Model,
		httpClient: client,
	}, nil
}

type engineCreateRequest struct {
	Model       string `json:"model,omitempty"`
	Prompt      string `json:"prompt"`
	Script      string `json:"script,omitempty"`
	Style       string `json:"style,omitempty"`
	Locale      string `json:"locale,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	Quality     string `json:"quality,omitempty"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	AudioURL    string `json:"audio_url,omitempty"`
	Seed        *int64 `json:"seed,omitempty"`
	Effects     bool   `json:"effects,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

type engineCreateResponse struct {
	ID string `json:"id"`
}

type engineQueryResponse struct {
	Status       string `json:"status"`
	Progress     int    `json:"progress"`
	VideoURL     string `json:"video_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	FailReason   string `json:"fail_reason,omitempty"`
}

// Submit creates a generation job and returns the engine's job id.
func (e *Engine) Submit(ctx context.Context, req Request) (string, error) {
	payload := engineCreateRequest{
		Model:       e.model,
		Prompt:      req.Prompt,
		Script:      req.Script,
		Style:       req.Style,
		Locale:      req.Locale,
		Duration:    req.Duration,
		Quality:     req.Quality,
		AspectRatio: req.AspectRatio,
		AudioURL:    req.AudioURL,
		Seed:        req.Seed,
		Effects:     req.Effects,
		RequestID:   req.RequestID,
	}
	var created engineCreateResponse
	if err := e.do(ctx, http.MethodPost, "/videos", payload, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("engine: create returned no job id")
	}
	return created.ID, nil
}

// Poll queries the state of a submitted job.
func (e *Engine) Poll(ctx context.Context, jobID string) (*Result, error) {
	var state engineQueryResponse
	if err := e.do(ctx, http.MethodGet, "/videos/"+jobID, nil, &state); err != nil {
		return nil, err
	}
	result := &Result{Progress: state.Progress}
	switch strings.ToLower(state.Status) {
	case "queued", "pending", "running", "processing":
		result.Status = JobRunning
	case "succeeded", "completed":
		result.Status = JobSucceeded
		result.Progress = 100
		result.VideoURL = state.VideoURL
		result.ThumbnailURL = state.ThumbnailURL
		if result.VideoURL == "" {
			return nil, fmt.Errorf("engine: job %s succeeded without a video url", jobID)
		}
	case "failed", "error":
		result.Status = JobFailed
		result.Error = state.FailReason
		if result.Error == "" {
			result.Error = "engine reported failure"
		}
	default:
		return nil, fmt.Errorf("engine: job %s has unknown status %q", jobID, state.Status)
	}
	return result, nil
}

func (e *Engine) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("engine: encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("engine: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("engine: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("engine: %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("engine: decode response: %w", err)
	}
	return nil
}

var _ Generator = (*Engine)(nil)
