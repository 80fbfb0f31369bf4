package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hoanghai1803/casescout/internal/config"
)

// app carries state shared by all subcommands once the root command has
// loaded configuration.
type app struct {
	cfgFile string
	debug   bool
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "casescout",
		Short: "Extract case-study listings from a marketing site",
		Long: `casescout reads a case-study listing page (saved or live), recovers each
card's title, canonical URL and publication date, and writes the records as
JSON. It can also archive runs in SQLite and serve them over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(a.debug)

			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			a.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "config.toml", "path to config file")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(newExtractCmd(a), newServeCmd(a), newRunsCmd(a))
	return root
}

// setupLogging sends structured logs to stderr so stdout carries only data.
func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
