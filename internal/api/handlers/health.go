package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/plataforma-eventos/server/internal/store"
)

// Healthz returns a lightweight liveness response.
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondHealth(w, http.StatusOK, "ok")
	})
}

// Readyz reports readiness by exercising the record store: if the data
// directory is unreadable or corrupt, the server should not take traffic.
func Readyz(st *store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			respondHealth(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		if _, err := st.Users(); err != nil {
			respondHealth(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		respondHealth(w, http.StatusOK, "ready")
	})
}

type healthResponse struct {
	Status string `json:"status"`
}

func respondHealth(w http.ResponseWriter, status int, value string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: value})
}
