package domain

import (
	"fmt"
	"strings"
	"time"
)

// ProjectStatus enumerates project lifecycle states.
type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "DRAFT"
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusArchived  ProjectStatus = "ARCHIVED"
)

// ParseProjectStatus maps a wire literal onto a ProjectStatus. Unknown
// literals are rejected rather than silently accepted.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch ProjectStatus(s) {
	case ProjectStatusDraft, ProjectStatusActive, ProjectStatusCompleted, ProjectStatusArchived:
		return ProjectStatus(s), nil
	}
	return "", fmt.Errorf("%w: project status %q", ErrInvalidStatus, s)
}

// CanTransition reports whether the status may move to the target state.
// ARCHIVED is reachable from every other state and is terminal.
func (s ProjectStatus) CanTransition(to ProjectStatus) bool {
	if s == ProjectStatusArchived {
		return false
	}
	if to == ProjectStatusArchived {
		return true
	}
	switch s {
	case ProjectStatusDraft:
		return to == ProjectStatusActive
	case ProjectStatusActive:
		return to == ProjectStatusCompleted
	}
	return false
}

// VideoProject is a user-facing container for video generation attempts.
// Tasks embedded in VideoTasks always carry this project's id as their
// ProjectID.
type VideoProject struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Status       ProjectStatus `json:"status"`
	VideoSubject string        `json:"videoSubject,omitempty"`
	VideoScript  string        `json:"videoScript,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	VideoTasks   []VideoTask   `json:"videoTasks"`

	// OwnerID scopes the project to the authenticated caller. It is
	// persistence metadata, not part of the wire contract.
	OwnerID string `json:"-"`
}

// Validate checks the structural invariants of the project record.
func (p *VideoProject) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: project id is required", ErrInvalidRecord)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: project name is required", ErrInvalidRecord)
	}
	if _, err := ParseProjectStatus(string(p.Status)); err != nil {
		return err
	}
	for i := range p.VideoTasks {
		if p.VideoTasks[i].ProjectID != p.ID {
			return fmt.Errorf("%w: task %s belongs to project %s, embedded in %s",
				ErrInvalidRecord, p.VideoTasks[i].ID, p.VideoTasks[i].ProjectID, p.ID)
		}
	}
	return nil
}

// Transition moves the project to the target status or fails with
// ErrInvalidTransition.
func (p *VideoProject) Transition(to ProjectStatus) error {
	if _, err := ParseProjectStatus(string(to)); err != nil {
		return err
	}
	if !p.Status.CanTransition(to) {
		return fmt.Errorf("%w: project %s → %s", ErrInvalidTransition, p.Status, to)
	}
	p.Status = to
	return nil
}
