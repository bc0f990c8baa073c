package video

import "context"

// Request carries one generation job to a provider.
type Request struct {
	RequestID   string
	Prompt      string
	Script      string
	Style       string
	Locale      string
	Duration    int
	Quality     string
	AspectRatio string
	AudioURL    string
	Seed        *int64
	Effects     bool
}

// JobStatus is the provider-side view of a job's lifecycle.
type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Result is one progress observation of a submitted job.
type Result struct {
	Status       JobStatus
	Progress     int
	VideoURL     string
	ThumbnailURL string
	Error        string
}

// Generator submits generation jobs to an engine and polls their state.
// Submit returns the engine's job identifier, which the caller persists
// for correlation.
type Generator interface {
	Submit(ctx context.Context, req Request) (string, error)
	Poll(ctx context.Context, jobID string) (*Result, error)
}
