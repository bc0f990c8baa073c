package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TaskStatus enumerates the video generation job lifecycle.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusProcessing TaskStatus = "PROCESSING"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusFailed     TaskStatus = "FAILED"
)

// ParseTaskStatus maps a wire literal onto a TaskStatus, rejecting
// anything outside the closed set.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskStatusPending, TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed:
		return TaskStatus(s), nil
	}
	return "", fmt.Errorf("%w: task status %q", ErrInvalidStatus, s)
}

// Terminal reports whether the status is a final state.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// CanTransition encodes the linear machine
// PENDING → PROCESSING → {COMPLETED, FAILED}. Terminal states are not
// re-enterable.
func (s TaskStatus) CanTransition(to TaskStatus) bool {
	switch s {
	case TaskStatusPending:
		return to == TaskStatusProcessing
	case TaskStatusProcessing:
		return to == TaskStatusCompleted || to == TaskStatusFailed
	}
	return false
}

// VideoTask is one unit of video generation work. TaskID correlates the
// record with the external engine's job identifier and lives in a
// different namespace than ID.
type VideoTask struct {
	ID             string          `json:"id"`
	ProjectID      string          `json:"projectId"`
	TaskID         string          `json:"taskId"`
	Status         TaskStatus      `json:"status"`
	Progress       int             `json:"progress"`
	VideoURL       string          `json:"videoUrl,omitempty"`
	ThumbnailURL   string          `json:"thumbnailUrl,omitempty"`
	VideoSettings  json.RawMessage `json:"videoSettings"`
	CreditsCost    int             `json:"creditsCost"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	IsEdited       bool            `json:"isEdited,omitempty"`
	OriginalTaskID string          `json:"originalTaskId,omitempty"`

	// Project, EditedVersions and EditedFrom are denormalized views
	// attached by the service layer for convenience traversal. The
	// authoritative edges are ProjectID and OriginalTaskID.
	Project        *VideoProject `json:"project,omitempty"`
	EditedVersions []VideoTask   `json:"editedVersions,omitempty"`
	EditedFrom     *VideoTask    `json:"editedFrom,omitempty"`

	// ErrorMessage records the failure reason for FAILED tasks. Kept out
	// of the wire contract.
	ErrorMessage string `json:"-"`
}

// Validate checks structural invariants of the task record.
func (t *VideoTask) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: task id is required", ErrInvalidRecord)
	}
	if strings.TrimSpace(t.ProjectID) == "" {
		return fmt.Errorf("%w: task project id is required", ErrInvalidRecord)
	}
	if _, err := ParseTaskStatus(string(t.Status)); err != nil {
		return err
	}
	if t.Progress < 0 || t.Progress > MaxProgress {
		return fmt.Errorf("%w: progress %d outside 0..%d", ErrInvalidRecord, t.Progress, MaxProgress)
	}
	if t.CreditsCost < 0 {
		return fmt.Errorf("%w: credits cost must not be negative", ErrInvalidRecord)
	}
	if t.Status == TaskStatusCompleted && strings.TrimSpace(t.VideoURL) == "" {
		return fmt.Errorf("%w: completed task requires a video url", ErrInvalidRecord)
	}
	if t.IsEdited && strings.TrimSpace(t.OriginalTaskID) == "" {
		return fmt.Errorf("%w: edited task requires originalTaskId", ErrInvalidRecord)
	}
	return nil
}

// MaxProgress is the upper bound of the completion indicator. Progress is
// an integer percentage.
const MaxProgress = 100

// SetProgress clamps and records a progress report from the engine.
// Progress never moves backwards.
func (t *VideoTask) SetProgress(p int) {
	if p < 0 {
		p = 0
	}
	if p > MaxProgress {
		p = MaxProgress
	}
	if p > t.Progress {
		t.Progress = p
	}
}

// MarkProcessing claims the task for execution.
func (t *VideoTask) MarkProcessing() error {
	if !t.Status.CanTransition(TaskStatusProcessing) {
		return fmt.Errorf("%w: task %s → %s", ErrInvalidTransition, t.Status, TaskStatusProcessing)
	}
	t.Status = TaskStatusProcessing
	return nil
}

// MarkCompleted finishes the task successfully. A completed task always
// carries the result url and full progress.
func (t *VideoTask) MarkCompleted(videoURL, thumbnailURL string) error {
	if !t.Status.CanTransition(TaskStatusCompleted) {
		return fmt.Errorf("%w: task %s → %s", ErrInvalidTransition, t.Status, TaskStatusCompleted)
	}
	if strings.TrimSpace(videoURL) == "" {
		return fmt.Errorf("%w: completed task requires a video url", ErrInvalidRecord)
	}
	t.Status = TaskStatusCompleted
	t.VideoURL = videoURL
	t.ThumbnailURL = thumbnailURL
	t.Progress = MaxProgress
	return nil
}

// MarkFailed finishes the task with a failure reason.
func (t *VideoTask) MarkFailed(reason string) error {
	if !t.Status.CanTransition(TaskStatusFailed) {
		return fmt.Errorf("%w: task %s → %s", ErrInvalidTransition, t.Status, TaskStatusFailed)
	}
	t.Status = TaskStatusFailed
	t.ErrorMessage = reason
	return nil
}
