package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"videoserver/internal/domain"
	"videoserver/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type videoGenerateRequest struct {
	domain.VideoGenerationParams
	VideoSubject string `json:"videoSubject"`
	VideoScript  string `json:"videoScript"`
}

type videoEditRequest struct {
	Options json.RawMessage `json:"options"`
}

type taskAcceptedResponse struct {
	Task             *domain.VideoTask `json:"task"`
	RemainingCredits int               `json:"remainingCredits"`
}

func (a *App) VideosGenerate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	projectID := chi.URLParam(r, "project_id")
	if projectID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "project_id required")
		return
	}
	var req videoGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := req.VideoGenerationParams.Validate(); err != nil {
		a.domainError(w, r, err, "invalid generation params")
		return
	}
	project, err := a.Projects.GetByID(r.Context(), projectID, userID)
	if err != nil {
		a.domainError(w, r, err, "failed to load project")
		return
	}
	if project.Status != domain.ProjectStatusDraft && project.Status != domain.ProjectStatusActive {
		a.error(w, http.StatusConflict, "conflict", "project no longer accepts generations")
		return
	}
	if req.VideoSubject != "" || req.VideoScript != "" {
		// Only the supplied brief fields change; the stored ones survive.
		subject, script := project.VideoSubject, project.VideoScript
		if req.VideoSubject != "" {
			subject = req.VideoSubject
		}
		if req.VideoScript != "" {
			script = req.VideoScript
		}
		if err := a.Projects.UpdateBrief(r.Context(), projectID, subject, script); err != nil {
			a.domainError(w, r, err, "failed to store project brief")
			return
		}
		project.VideoSubject = subject
		project.VideoScript = script
	}
	settings, err := domain.EncodeSettings(domain.Settings{
		Params: req.VideoGenerationParams,
		Script: project.VideoScript,
		Locale: middleware.LocaleFromContext(r.Context()),
	})
	if err != nil {
		a.domainError(w, r, err, "failed to encode video settings")
		return
	}
	task := a.newPendingTask(projectID, settings, a.GenerationCost)
	remaining, err := a.Tasks.Enqueue(r.Context(), task, userID)
	if err != nil {
		a.domainError(w, r, err, "failed to queue video task")
		return
	}
	if project.Status == domain.ProjectStatusDraft {
		if err := a.Projects.UpdateStatus(r.Context(), projectID, domain.ProjectStatusActive); err != nil {
			a.Log.Error().Err(err).Str("project_id", projectID).Msg("activate project after enqueue")
		}
	}
	a.recordEnqueue(r.Context(), task.CreditsCost, false)
	a.json(w, http.StatusAccepted, taskAcceptedResponse{Task: task, RemainingCredits: remaining})
}

func (a *App) VideoStatus(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	videoID := chi.URLParam(r, "video_id")
	if videoID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "video_id required")
		return
	}
	task, project, err := a.loadTaskForUser(r.Context(), videoID, userID)
	if err != nil {
		a.domainError(w, r, err, "failed to load video task")
		return
	}
	siblings, err := a.Tasks.ListByProject(r.Context(), task.ProjectID)
	if err != nil {
		a.domainError(w, r, err, "failed to load video task")
		return
	}
	resolved, err := domain.NewLineage(siblings).Resolve(videoID)
	if err != nil {
		a.domainError(w, r, err, "failed to resolve lineage")
		return
	}
	// The embedded project view stays shallow.
	shallow := *project
	shallow.VideoTasks = nil
	resolved.Project = &shallow
	a.json(w, http.StatusOK, resolved)
}

func (a *App) VideosEdit(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	videoID := chi.URLParam(r, "video_id")
	if videoID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "video_id required")
		return
	}
	var req videoEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	original, _, err := a.loadTaskForUser(r.Context(), videoID, userID)
	if err != nil {
		a.domainError(w, r, err, "failed to load video task")
		return
	}
	if original.Status != domain.TaskStatusCompleted {
		a.error(w, http.StatusConflict, "conflict", "only completed videos can be edited")
		return
	}
	settings, err := domain.MergeAdvanced(original.VideoSettings, req.Options)
	if err != nil {
		a.domainError(w, r, err, "failed to merge editor options")
		return
	}
	task := a.newPendingTask(original.ProjectID, settings, a.EditCost)
	task.IsEdited = true
	task.OriginalTaskID = original.ID
	remaining, err := a.Tasks.Enqueue(r.Context(), task, userID)
	if err != nil {
		a.domainError(w, r, err, "failed to queue edit task")
		return
	}
	a.recordEnqueue(r.Context(), task.CreditsCost, true)
	a.json(w, http.StatusAccepted, taskAcceptedResponse{Task: task, RemainingCredits: remaining})
}

func (a *App) VideoLineage(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	videoID := chi.URLParam(r, "video_id")
	if videoID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "video_id required")
		return
	}
	task, _, err := a.loadTaskForUser(r.Context(), videoID, userID)
	if err != nil {
		a.domainError(w, r, err, "failed to load video task")
		return
	}
	siblings, err := a.Tasks.ListByProject(r.Context(), task.ProjectID)
	if err != nil {
		a.domainError(w, r, err, "failed to load video tasks")
		return
	}
	lineage := domain.NewLineage(siblings)
	resolved, err := lineage.Resolve(videoID)
	if err != nil {
		a.domainError(w, r, err, "failed to resolve lineage")
		return
	}
	chain, err := lineage.Chain(videoID)
	if err != nil {
		a.domainError(w, r, err, "failed to resolve lineage")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"task":     resolved,
		"chain":    chain,
		"versions": resolved.EditedVersions,
	})
}

func (a *App) newPendingTask(projectID string, settings json.RawMessage, cost int) *domain.VideoTask {
	now := time.Now().UTC()
	return &domain.VideoTask{
		ID:            uuid.NewString(),
		ProjectID:     projectID,
		Status:        domain.TaskStatusPending,
		Progress:      0,
		VideoSettings: settings,
		CreditsCost:   cost,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// loadTaskForUser fetches a task and proves ownership through its project.
func (a *App) loadTaskForUser(ctx context.Context, taskID, userID string) (*domain.VideoTask, *domain.VideoProject, error) {
	task, err := a.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	project, err := a.Projects.GetByID(ctx, task.ProjectID, userID)
	if err != nil {
		return nil, nil, err
	}
	return task, project, nil
}

func (a *App) recordEnqueue(ctx context.Context, cost int, edit bool) {
	if a.Metrics != nil {
		a.Metrics.VideosEnqueued.Inc()
		a.Metrics.CreditsSpent.Add(float64(cost))
	}
	if a.Analytics == nil {
		return
	}
	counters := map[string]int{
		domain.CounterVideosRequested: 1,
		domain.CounterCreditsSpent:    cost,
	}
	if edit {
		counters[domain.CounterEditsRequested] = 1
	}
	day := time.Now().UTC().Format("2006-01-02")
	if err := a.Analytics.IncrementCounters(ctx, day, counters); err != nil {
		a.Log.Warn().Err(err).Msg("analytics increment failed")
	}
	if country := middleware.CountryFromContext(ctx); country != "" {
		if err := a.Analytics.IncrementCountry(ctx, day, country, 1); err != nil {
			a.Log.Warn().Err(err).Str("country", country).Msg("country increment failed")
		}
	}
}
