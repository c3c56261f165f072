package cmd

import (
	"github.com/huangsam/lochist/core"
	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/internal/iocache"
	"github.com/spf13/cobra"
)

// seriesCmd reports the stored history as monthly series.
var seriesCmd = &cobra.Command{
	Use:   "series [path]",
	Short: "Show monthly lines-of-code per repository and in total.",
	Long: `Fold the stored daily history into a window of calendar months.

Each month shows the latest measurement taken during it, or the last one
before it. The current month always shows the live size of the working tree.
Repositories listed in --fork-repos are shown but left out of the total.

Examples:
  # Last 12 months as a table
  lochist series ~/src

  # Two years as CSV, ignoring a vendored fork
  lochist series ~/src --months 24 --fork-repos upstream-lib --output csv --output-file loc.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSeries(rootCtx, cfg, iocache.Manager.GetStore()); err != nil {
			contract.LogFatal("Cannot build series", err)
		}
	},
}
