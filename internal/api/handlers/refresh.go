package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/casescout/internal/config"
	"github.com/hoanghai1803/casescout/internal/pipeline"
)

// Refresh handles POST /api/refresh. It runs the configured pipeline, archives
// the result and returns {"run": ..., "cases": [...]}.
func Refresh(runner *pipeline.Runner, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := pipeline.Request{
			InputPath: cfg.Source.Input,
			SourceURL: cfg.Source.URL,
			BaseURL:   cfg.Source.BaseURL,
			Format:    cfg.Output.Format,
			Enrich:    cfg.Enrich.MissingDates,
			Store:     true,
		}

		res, err := runner.Run(r.Context(), req)
		if err != nil {
			slog.Error("refresh failed", "error", err)
			writeError(w, http.StatusBadGateway, "Failed to refresh cases")
			return
		}

		slog.Info("refresh complete",
			"run_id", res.Run.RunID,
			"cases", res.Run.CasesFound,
			"new", res.Run.NewCases,
		)
		writeJSON(w, http.StatusOK, res)
	}
}
