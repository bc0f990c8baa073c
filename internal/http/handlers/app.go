package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"videoserver/internal/domain"
	"videoserver/internal/infra"
	"videoserver/internal/middleware"
)

// App bundles the dependencies shared by all HTTP handlers.
type App struct {
	Log       infra.Logger
	Projects  domain.ProjectRepository
	Tasks     domain.TaskRepository
	Credits   domain.CreditRepository
	Analytics domain.AnalyticsRepository
	Metrics   *infra.Metrics

	GenerationCost int
	EditCost       int
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]errorBody{"error": {Code: errCode, Message: message}})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// domainError maps domain sentinel errors onto HTTP responses. Unmatched
// errors become a 500 with a generic message.
func (a *App) domainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusForbidden, "forbidden", "not allowed")
	case errors.Is(err, domain.ErrInvalidParams),
		errors.Is(err, domain.ErrInvalidRecord),
		errors.Is(err, domain.ErrInvalidStatus):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		a.error(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrCreditsExhausted):
		a.error(w, http.StatusPaymentRequired, "credits_exhausted", "not enough credits")
	case errors.Is(err, domain.ErrLineageCycle):
		a.error(w, http.StatusConflict, "conflict", "edit lineage contains a cycle")
	default:
		a.Log.Error().Err(err).Str("path", r.URL.Path).Msg(fallback)
		a.error(w, http.StatusInternalServerError, "internal", fallback)
	}
}
