package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/casescout/internal/storage"
)

// ListRuns handles GET /api/runs. It returns the most recent extraction runs.
func ListRuns(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := parseLimit(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		runs, err := store.RecentRuns(r.Context(), limit)
		if err != nil {
			slog.Error("failed to list runs", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list runs")
			return
		}

		writeJSON(w, http.StatusOK, runs)
	}
}
