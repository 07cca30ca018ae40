package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"docsum/internal/domain"

	"github.com/spf13/cobra"
)

func newStatsCommand() *cobra.Command {
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print aggregates of the run journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, os.Stderr, true)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if a.db == nil {
				return errors.New("run journal is disabled (DB_PATH is empty)")
			}

			var from time.Time
			if since > 0 {
				from = time.Now().Add(-since)
			}

			stats, err := a.db.Stats(ctx, from)
			if err != nil {
				a.log.ErrorContext(ctx, "Failed to get stats",
					"error", err,
					"since", since.String())

				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "runs:      %d\n", stats.Total)
			fmt.Fprintf(out, "failed:    %d\n", stats.Failed)
			fmt.Fprintf(out, "cached:    %d\n", stats.Cached)
			fmt.Fprintf(out, "avg (ms):  %.0f\n", stats.AvgDurationMS)

			for _, format := range sortedFormats(stats.ByFormat) {
				fmt.Fprintf(out, "%-10s %d\n", string(format)+":", stats.ByFormat[format])
			}

			return nil
		},
	}

	cmd.Flags().DurationVar(&since, "since", 0, "only count runs newer than this (e.g. 24h)")

	return cmd
}

func sortedFormats(byFormat map[domain.Format]int64) []domain.Format {
	formats := make([]domain.Format, 0, len(byFormat))
	for f := range byFormat {
		formats = append(formats, f)
	}
	slices.Sort(formats)

	return formats
}
