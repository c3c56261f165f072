package cmd

import (
	"github.com/huangsam/lochist/core"
	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/internal/iocache"
	"github.com/spf13/cobra"
)

// accumulateCmd fills the store with one measurement per repository and day.
var accumulateCmd = &cobra.Command{
	Use:   "accumulate [path]",
	Short: "Measure every repository at the end of each day in a date range.",
	Long: `Reconstruct lines-of-code history for every repository under a directory.

For each repository and each day in the range, the last commit of the day is
checked out in a disposable workspace and measured with the configured line
counter. Results are kept in the store, so reruns only measure new days.

Days before a repository's first commit, or without any commit yet, are
recorded as zero. Days whose checkout fails are left out and retried on the
next run.

Examples:
  # Measure yesterday and today
  lochist accumulate ~/src

  # Backfill a whole year
  lochist accumulate ~/src --start 2024-01-01 --end 2024-12-31

  # Re-measure the last week with scc into SQLite
  lochist accumulate ~/src --days 7 --recompute --counter scc --store-backend sqlite`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAccumulate(rootCtx, cfg, iocache.Manager.GetStore()); err != nil {
			contract.LogFatal("Cannot run accumulation", err)
		}
	},
}
