package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hoanghai1803/casescout/internal/config"
	"github.com/hoanghai1803/casescout/internal/enrich"
	"github.com/hoanghai1803/casescout/internal/export"
	"github.com/hoanghai1803/casescout/internal/pipeline"
	"github.com/hoanghai1803/casescout/internal/source"
	"github.com/hoanghai1803/casescout/internal/storage"
)

type extractFlags struct {
	input   string
	url     string
	baseURL string
	output  string
	format  string
	timeout int
	quiet   bool
	enrich  bool
	store   bool
}

func newExtractCmd(a *app) *cobra.Command {
	var f extractFlags

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract cases from the listing page and write them out",
		Example: `  casescout extract
  casescout extract --input saved/cases.html --base-url https://ads.vk.com
  casescout extract --url https://ads.vk.com/cases --format yaml --quiet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyExtractFlags(cmd, a.cfg, f)
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("validating options: %w", err)
			}
			return runExtract(cmd, a.cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.input, "input", source.DefaultInputPath, "saved listing page to read")
	fl.StringVar(&f.url, "url", "", "fetch this listing page instead of reading --input")
	fl.StringVar(&f.baseURL, "base-url", "", "base URL for relative links (derived from --url when empty)")
	fl.StringVarP(&f.output, "output", "o", export.DefaultOutputPath, "file to write results to")
	fl.StringVar(&f.format, "format", export.FormatJSON, `output format: "json" or "yaml"`)
	fl.IntVar(&f.timeout, "timeout", int(source.DefaultTimeout.Seconds()), "fetch timeout in seconds")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "do not print results to stdout")
	fl.BoolVar(&f.enrich, "enrich", false, "backfill missing dates from each case page")
	fl.BoolVar(&f.store, "store", false, "archive cases and the run in SQLite")

	return cmd
}

// applyExtractFlags overrides config values with flags the user set.
func applyExtractFlags(cmd *cobra.Command, cfg *config.Config, f extractFlags) {
	fl := cmd.Flags()
	if fl.Changed("input") {
		cfg.Source.Input = f.input
	}
	if fl.Changed("url") {
		cfg.Source.URL = f.url
	}
	if fl.Changed("base-url") {
		cfg.Source.BaseURL = f.baseURL
	}
	if fl.Changed("output") {
		cfg.Output.Path = f.output
	}
	if fl.Changed("format") {
		cfg.Output.Format = f.format
	}
	if fl.Changed("timeout") {
		cfg.Source.TimeoutSeconds = f.timeout
	}
	if fl.Changed("quiet") {
		cfg.Output.Echo = !f.quiet
	}
	if fl.Changed("enrich") {
		cfg.Enrich.MissingDates = f.enrich
	}
	if fl.Changed("store") {
		cfg.Storage.Enabled = f.store
	}
}

func runExtract(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()

	fetcher := source.NewFetcher(source.FetcherOptions{
		Timeout:   cfg.Source.Timeout(),
		UserAgent: cfg.Source.UserAgent,
	})

	var archive pipeline.Archive
	if cfg.Storage.Enabled {
		store, err := storage.Open(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer store.Close()
		archive = store
	}

	runner := pipeline.NewRunner(
		source.NewLoader(fetcher),
		enrich.New(fetcher, enrich.Options{MaxConcurrent: cfg.Enrich.MaxConcurrent}),
		archive,
	)

	res, err := runner.Run(ctx, pipeline.Request{
		InputPath: cfg.Source.Input,
		SourceURL: cfg.Source.URL,
		BaseURL:   cfg.Source.BaseURL,
		Format:    cfg.Output.Format,
		Enrich:    cfg.Enrich.MissingDates,
		Store:     cfg.Storage.Enabled,
	})
	if err != nil {
		return err
	}

	payload, err := export.Encode(res.Cases, cfg.Output.Format)
	if err != nil {
		return err
	}
	if err := export.Persist(payload, cfg.Output.Path, cfg.Output.Echo, cmd.OutOrStdout()); err != nil {
		return err
	}

	slog.Info("saved cases",
		"count", len(res.Cases),
		"path", cfg.Output.Path,
		"run_id", res.Run.RunID,
	)
	return nil
}
