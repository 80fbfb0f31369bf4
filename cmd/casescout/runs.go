package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hoanghai1803/casescout/internal/models"
	"github.com/hoanghai1803/casescout/internal/storage"
)

func newRunsCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent archived extraction runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be >= 1, got %d", limit)
			}

			store, err := storage.Open(a.cfg.Storage.Path)
			if err != nil {
				return fmt.Errorf("opening archive: %w", err)
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "number of runs to show")
	return cmd
}

func printRuns(w io.Writer, runs []models.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "(no runs)")
		return
	}
	for _, r := range runs {
		origin := r.SourceURL
		if origin == "" {
			origin = r.InputPath
		}
		fmt.Fprintf(w, "- %s  %s  %d cases (%d new)  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.RunID, r.CasesFound, r.NewCases, origin)
		if r.Error != "" {
			fmt.Fprintf(w, "    error: %s\n", r.Error)
		}
	}
}
