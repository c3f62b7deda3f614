package daemon

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/climateops/powerfetch/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// statusRunLimit caps how many runs the status endpoint returns.
const statusRunLimit = 20

// NewRouter builds the daemon's HTTP surface: liveness, run status and
// Prometheus metrics.
func NewRouter(db *database.RunDB, registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealth)
	r.Get("/status", handleStatus(db))
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	Now  time.Time      `json:"now"`
	Runs []database.Run `json:"runs"`
}

func handleStatus(db *database.RunDB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "run log unavailable"})
			return
		}
		runs, err := db.RecentRuns(statusRunLimit)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Now: time.Now().UTC(), Runs: runs})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
