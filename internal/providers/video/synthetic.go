package video

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"
)

// Synthetic fabricates generation results locally. It is the default
// provider in development, where no engine credentials exist. Jobs
// advance deterministically: the same seed yields the same asset url.
type Synthetic struct {
	StepsToFinish int

	mu   sync.Mutex
	jobs map[string]*syntheticJob
	next int
}

type syntheticJob struct {
	req   Request
	polls int
}

// NewSynthetic creates a synthetic provider that completes a job after
// the given number of polls.
func NewSynthetic(steps int) *Synthetic {
	if steps < 1 {
		steps = 3
	}
	return &Synthetic{StepsToFinish: steps, jobs: make(map[string]*syntheticJob)}
}

// Submit registers the job and returns a fabricated engine identifier.
func (s *Synthetic) Submit(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	jobID := fmt.Sprintf("syn-%d-%d", time.Now().Unix(), s.next)
	s.jobs[jobID] = &syntheticJob{req: req}
	return jobID, nil
}

// Poll advances the job by one step and reports its state.
func (s *Synthetic) Poll(ctx context.Context, jobID string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("synthetic: unknown job %s", jobID)
	}
	job.polls++
	if job.polls < s.StepsToFinish {
		return &Result{
			Status:   JobRunning,
			Progress: job.polls * 100 / s.StepsToFinish,
		}, nil
	}
	delete(s.jobs, jobID)
	slug := assetSlug(job.req)
	return &Result{
		Status:       JobSucceeded,
		Progress:     100,
		VideoURL:     fmt.Sprintf("https://cdn.example.com/synthetic/%s.mp4", slug),
		ThumbnailURL: fmt.Sprintf("https://cdn.example.com/synthetic/%s.jpg", slug),
	}, nil
}

// assetSlug derives a stable asset name from the request. Seeded requests
// map to the same slug regardless of request id, which makes seeded
// generations reproducible.
func assetSlug(req Request) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d|%s|%s", req.Prompt, req.Duration, req.Quality, req.AspectRatio)
	if req.Seed != nil {
		fmt.Fprintf(h, "|%d", *req.Seed)
		return fmt.Sprintf("seed-%x", h.Sum64())
	}
	fmt.Fprintf(h, "|%s", req.RequestID)
	return fmt.Sprintf("%x", h.Sum64())
}

var _ Generator = (*Synthetic)(nil)
