package handlers

import (
	"net/http"
)

// Health reports process liveness. Database readiness is checked once at
// startup via the pool ping.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "videoserver",
	})
}
