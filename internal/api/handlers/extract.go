package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/casescout/internal/extract"
	"github.com/hoanghai1803/casescout/internal/models"
	"github.com/hoanghai1803/casescout/internal/source"
)

// maxExtractBody caps the size of a posted listing page.
const maxExtractBody = 16 << 20

type extractRequest struct {
	HTML    string `json:"html"`
	BaseURL string `json:"base_url"`
}

// ExtractHTML handles POST /api/extract. It runs the extraction core over a
// posted HTML document. A missing base_url falls back to the default site;
// one that is not an absolute URL is rejected with 400.
func ExtractHTML() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req extractRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxExtractBody)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		baseURL := source.ResolveBaseURL(req.BaseURL, "")

		var (
			cases []models.Case
			err   error
		)
		if extract.IsFeed(req.HTML) {
			cases, err = extract.ExtractFeed(req.HTML, baseURL)
		} else {
			cases, err = extract.Extract(req.HTML, baseURL)
		}
		if err != nil {
			if errors.Is(err, extract.ErrInvalidBaseURL) {
				writeError(w, http.StatusBadRequest, "base_url must be an absolute URL")
				return
			}
			slog.Error("failed to extract cases", "error", err)
			writeError(w, http.StatusUnprocessableEntity, "Failed to extract cases")
			return
		}

		writeJSON(w, http.StatusOK, cases)
	}
}
