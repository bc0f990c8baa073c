package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"videoserver/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type projectCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type projectPatchRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (a *App) ProjectsCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req projectCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "name required")
		return
	}
	now := time.Now().UTC()
	project := &domain.VideoProject{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Status:      domain.ProjectStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
		VideoTasks:  []domain.VideoTask{},
		OwnerID:     userID,
	}
	if err := project.Validate(); err != nil {
		a.domainError(w, r, err, "invalid project")
		return
	}
	if err := a.Projects.Create(r.Context(), project); err != nil {
		a.domainError(w, r, err, "failed to create project")
		return
	}
	a.json(w, http.StatusCreated, project)
}

func (a *App) ProjectsList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	projects, err := a.Projects.ListByOwner(r.Context(), userID)
	if err != nil {
		a.domainError(w, r, err, "failed to list projects")
		return
	}
	if projects == nil {
		projects = []domain.VideoProject{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": projects})
}

func (a *App) ProjectsGet(w http.ResponseWriter, r *http.Request) {
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
	project, err := a.Projects.GetByID(r.Context(), projectID, userID)
	if err != nil {
		a.domainError(w, r, err, "failed to load project")
		return
	}
	a.json(w, http.StatusOK, project)
}

func (a *App) ProjectsPatch(w http.ResponseWriter, r *http.Request) {
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
	var req projectPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Name == nil && req.Description == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "nothing to update")
		return
	}
	project, err := a.Projects.GetByID(r.Context(), projectID, userID)
	if err != nil {
		a.domainError(w, r, err, "failed to load project")
		return
	}
	name := project.Name
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			a.error(w, http.StatusBadRequest, "bad_request", "name must not be empty")
			return
		}
	}
	description := project.Description
	if req.Description != nil {
		description = *req.Description
	}
	if err := a.Projects.UpdateMeta(r.Context(), projectID, userID, name, description); err != nil {
		a.domainError(w, r, err, "failed to update project")
		return
	}
	project.Name = name
	project.Description = description
	a.json(w, http.StatusOK, project)
}

func (a *App) ProjectsArchive(w http.ResponseWriter, r *http.Request) {
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
	project, err := a.Projects.GetByID(r.Context(), projectID, userID)
	if err != nil {
		a.domainError(w, r, err, "failed to load project")
		return
	}
	if err := project.Transition(domain.ProjectStatusArchived); err != nil {
		a.domainError(w, r, err, "cannot archive project")
		return
	}
	if err := a.Projects.UpdateStatus(r.Context(), projectID, domain.ProjectStatusArchived); err != nil {
		a.domainError(w, r, err, "failed to archive project")
		return
	}
	a.json(w, http.StatusOK, project)
}
