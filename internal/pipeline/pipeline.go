// Package pipeline runs one extraction end to end: load the listing page,
// extract cases from it, optionally backfill dates and optionally archive the
// result together with an audit record of the run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hoanghai1803/casescout/internal/extract"
	"github.com/hoanghai1803/casescout/internal/models"
	"github.com/hoanghai1803/casescout/internal/source"
)

// DocumentLoader is implemented by *source.Loader.
type DocumentLoader interface {
	Load(ctx context.Context, inputPath, sourceURL string) (*source.Document, error)
}

// DateFiller is implemented by *enrich.Enricher.
type DateFiller interface {
	FillMissingDates(ctx context.Context, cases []models.Case) (int, error)
}

// Archive is implemented by *storage.Store.
type Archive interface {
	SaveCases(ctx context.Context, cases []models.Case, sourceURL string) (int, error)
	CreateRun(ctx context.Context, run *models.Run) (int64, error)
}

// Request describes a single run.
type Request struct {
	InputPath string
	SourceURL string
	BaseURL   string
	Format    string
	Enrich    bool
	Store     bool
}

// Result is what a successful run produced.
type Result struct {
	Run   models.Run    `json:"run"`
	Cases []models.Case `json:"cases"`
}

// Runner wires the loader, enricher and archive together. The enricher and
// archive may be nil, in which case requests asking for them skip that step.
type Runner struct {
	loader   DocumentLoader
	enricher DateFiller
	archive  Archive
}

// NewRunner creates a Runner.
func NewRunner(loader DocumentLoader, enricher DateFiller, archive Archive) *Runner {
	return &Runner{loader: loader, enricher: enricher, archive: archive}
}

// Run executes req. When archiving is requested, a run record is written
// even if the run fails, carrying the error text.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	run := models.Run{
		RunID:     uuid.NewString(),
		SourceURL: req.SourceURL,
		InputPath: req.InputPath,
		Format:    req.Format,
	}
	if run.Format == "" {
		run.Format = "json"
	}
	archiving := req.Store && r.archive != nil

	fail := func(err error) (*Result, error) {
		if archiving {
			run.Error = err.Error()
			r.recordRun(context.WithoutCancel(ctx), &run)
		}
		return nil, err
	}

	doc, err := r.loader.Load(ctx, req.InputPath, req.SourceURL)
	if err != nil {
		return fail(fmt.Errorf("loading listing page: %w", err))
	}
	run.SourceURL = doc.SourceURL
	run.InputPath = doc.InputPath
	run.BaseURL = source.ResolveBaseURL(req.BaseURL, doc.SourceURL)

	var cases []models.Case
	if extract.IsFeed(doc.Body) {
		slog.Info("listing page is a feed", "source", run.SourceURL)
		cases, err = extract.ExtractFeed(doc.Body, run.BaseURL)
	} else {
		cases, err = extract.Extract(doc.Body, run.BaseURL)
	}
	if err != nil {
		return fail(fmt.Errorf("extracting cases: %w", err))
	}
	run.CasesFound = len(cases)
	slog.Info("extracted cases", "count", len(cases), "base_url", run.BaseURL)

	if req.Enrich {
		if r.enricher == nil {
			slog.Warn("date enrichment requested but no enricher is configured")
		} else {
			filled, err := r.enricher.FillMissingDates(ctx, cases)
			if err != nil {
				return fail(fmt.Errorf("enriching dates: %w", err))
			}
			slog.Info("backfilled publication dates", "filled", filled)
		}
	}

	if archiving {
		newCount, err := r.archive.SaveCases(ctx, cases, run.SourceURL)
		if err != nil {
			return fail(fmt.Errorf("archiving cases: %w", err))
		}
		run.NewCases = newCount
		if err := r.recordRun(ctx, &run); err != nil {
			return nil, err
		}
	} else {
		run.CreatedAt = time.Now().UTC()
	}

	return &Result{Run: run, Cases: cases}, nil
}

func (r *Runner) recordRun(ctx context.Context, run *models.Run) error {
	run.CreatedAt = time.Now().UTC()
	id, err := r.archive.CreateRun(ctx, run)
	if err != nil {
		slog.Error("failed to record run", "run_id", run.RunID, "error", err)
		return fmt.Errorf("recording run: %w", err)
	}
	run.ID = id
	return nil
}
