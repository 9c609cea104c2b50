package main

import (
	"fmt"
	"sort"

	"github.com/ferretcode/lovebug/internal/bootstrap"
	"github.com/ferretcode/lovebug/pkg/types"
	"github.com/spf13/cobra"
)

func newCrawlCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Run one crawl and store the reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := types.LoadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			a, err := newApp(ctx, config)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			if err := a.ensureIndexes(ctx); err != nil {
				return err
			}

			count, err := a.workflow.CrawlAndUpdate(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d reports updated\n", count)
			return nil
		},
	}
}

func newSeedCommand() *cobra.Command {
	var count int
	var keep bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with random Seoul test reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}

			config, err := types.LoadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			a, err := newApp(ctx, config)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			if err := a.ensureIndexes(ctx); err != nil {
				return err
			}

			result, err := bootstrap.NewSeeder(a.store, a.logger).Seed(ctx, count, keep)
			if err != nil {
				return err
			}

			if err := a.cache.Invalidate(ctx); err != nil {
				a.logger.Warn("error invalidating cache", "err", err)
			}

			printSeedResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", bootstrap.DefaultCount, "number of reports to generate")
	cmd.Flags().BoolVar(&keep, "keep", false, "keep existing reports instead of replacing them")

	return cmd
}

func printSeedResult(cmd *cobra.Command, result bootstrap.SeedResult) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "deleted %d, inserted %d\n", result.Deleted, result.Inserted)

	fmt.Fprintln(out, "\nby district:")
	for _, row := range sortedCounts(result.ByDistrict) {
		fmt.Fprintf(out, "  %s: %d\n", row.key, row.count)
	}

	severities := make(map[string]int, len(result.BySeverity))
	for severity, n := range result.BySeverity {
		severities[string(severity)] = n
	}

	fmt.Fprintln(out, "\nby severity:")
	for _, row := range sortedCounts(severities) {
		fmt.Fprintf(out, "  %s: %d\n", row.key, row.count)
	}
}

type countRow struct {
	key   string
	count int
}

// sortedCounts orders by count descending, then key.
func sortedCounts(counts map[string]int) []countRow {
	rows := make([]countRow, 0, len(counts))
	for key, count := range counts {
		rows = append(rows, countRow{key, count})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].key < rows[j].key
	})

	return rows
}
