package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/casescout/internal/storage"
)

// ListCases handles GET /api/cases. It returns archived cases, newest first,
// limited by the optional "limit" query parameter.
func ListCases(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := parseLimit(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		cases, err := store.ListCases(r.Context(), limit)
		if err != nil {
			slog.Error("failed to list cases", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list cases")
			return
		}

		writeJSON(w, http.StatusOK, cases)
	}
}

// LookupCase handles GET /api/cases/lookup?url=. It returns the archived case
// with that exact URL, or 404.
func LookupCase(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := r.URL.Query().Get("url")
		if url == "" {
			writeError(w, http.StatusBadRequest, "url query parameter is required")
			return
		}

		c, err := store.GetCaseByURL(r.Context(), url)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Case not found")
				return
			}
			slog.Error("failed to look up case", "url", url, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to look up case")
			return
		}

		writeJSON(w, http.StatusOK, c)
	}
}
