package domain

import "context"

// ProjectRepository defines persistence for video projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *VideoProject) error
	GetByID(ctx context.Context, id, ownerID string) (*VideoProject, error)
	ListByOwner(ctx context.Context, ownerID string) ([]VideoProject, error)
	UpdateMeta(ctx context.Context, id, ownerID, name, description string) error
	UpdateBrief(ctx context.Context, id, subject, script string) error
	UpdateStatus(ctx context.Context, id string, status ProjectStatus) error

	// CompleteIfActive flips an ACTIVE project to COMPLETED and leaves
	// projects in any other state untouched.
	CompleteIfActive(ctx context.Context, id string) error

	// OwnerOf resolves the owning user of a project.
	OwnerOf(ctx context.Context, id string) (string, error)
}

// TaskRepository defines persistence for video tasks, including the
// credit-consuming enqueue and the worker's claim cycle.
type TaskRepository interface {
	// Enqueue consumes the task's credit cost from the owner's balance
	// and inserts the PENDING task in one statement. Returns the
	// remaining balance, or ErrCreditsExhausted.
	Enqueue(ctx context.Context, task *VideoTask, ownerID string) (int, error)
	GetByID(ctx context.Context, id string) (*VideoTask, error)
	ListByProject(ctx context.Context, projectID string) ([]VideoTask, error)

	// ClaimPending atomically flips the oldest PENDING task to
	// PROCESSING and returns it, or ErrNotFound when the queue is empty.
	ClaimPending(ctx context.Context) (*VideoTask, error)
	SetExternalTask(ctx context.Context, id, taskID string) error
	UpdateProgress(ctx context.Context, id string, progress int) error
	MarkCompleted(ctx context.Context, id, videoURL, thumbnailURL string) error
	MarkFailed(ctx context.Context, id, reason string) error

	// TerminalCounts reports (total, completed, failed) for a project's
	// tasks, used to decide project completion.
	TerminalCounts(ctx context.Context, projectID string) (int, int, int, error)
}

// CreditRepository exposes the caller's generation credit balance.
type CreditRepository interface {
	Balance(ctx context.Context, ownerID string) (int, error)
	Grant(ctx context.Context, ownerID string, amount int) error
}

// AnalyticsRepository updates daily metric counters.
type AnalyticsRepository interface {
	IncrementCounters(ctx context.Context, day string, counters map[string]int) error
	IncrementCountry(ctx context.Context, day, country string, requests int) error
	GetSummary(ctx context.Context) (*AnalyticsDaily, error)
	CountryRequests(ctx context.Context, day string) ([]CountryCount, error)
}
