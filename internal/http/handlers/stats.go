package handlers

import (
	"errors"
	"net/http"

	"videoserver/internal/domain"
)

func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	summary, err := a.Analytics.GetSummary(r.Context())
	if errors.Is(err, domain.ErrNotFound) {
		// No activity recorded yet.
		summary = &domain.AnalyticsDaily{}
	} else if err != nil {
		a.domainError(w, r, err, "failed to load stats")
		return
	}
	balance, err := a.Credits.Balance(r.Context(), userID)
	if errors.Is(err, domain.ErrNotFound) {
		balance = 0
	} else if err != nil {
		a.domainError(w, r, err, "failed to load credit balance")
		return
	}
	countries := []domain.CountryCount{}
	if summary.Day != "" {
		countries, err = a.Analytics.CountryRequests(r.Context(), summary.Day)
		if err != nil {
			a.domainError(w, r, err, "failed to load country stats")
			return
		}
		if countries == nil {
			countries = []domain.CountryCount{}
		}
	}
	a.json(w, http.StatusOK, map[string]any{
		"videosRequested":   summary.VideosRequested,
		"videosGenerated":   summary.VideosGenerated,
		"videosFailed":      summary.VideosFailed,
		"editsRequested":    summary.EditsRequested,
		"creditsSpent":      summary.CreditsSpent,
		"creditsBalance":    balance,
		"requestsByCountry": countries,
	})
}
