// Package cmd defines the command-line interface for lochist.
package cmd

import (
	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(accumulateCmd)
	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("path", ".", "Directory holding the repositories, or a repository itself")
	rootCmd.PersistentFlags().String("repos", "", "Comma-separated repository names to include (default all)")
	rootCmd.PersistentFlags().String("fork-repos", "", "Comma-separated repository names excluded from totals")
	rootCmd.PersistentFlags().String("store-backend", string(schema.JSONBackend), "Store backend: json or sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("store", schema.DefaultStoreFile, "Path of the JSON store file")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for sqlite/mysql/postgresql (prefer LOCHIST_STORE_DB_CONNECT)")
	rootCmd.PersistentFlags().String("counter", string(schema.TokeiCounter), "Line counter: tokei or scc or cloc or builtin")
	rootCmd.PersistentFlags().String("count-timeout", contract.DefaultCountTimeout.String(), "Timeout of one line count")
	rootCmd.PersistentFlags().String("git-timeout", contract.DefaultGitTimeout.String(), "Timeout of one git invocation")
	rootCmd.PersistentFlags().String("exclude-languages", "", "Comma-separated languages left out of totals, added to the defaults")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of accumulateCmd to Viper
	accumulateCmd.Flags().String("start", "", "First date to measure (YYYY-MM-DD)")
	accumulateCmd.Flags().String("end", "", "Last date to measure (YYYY-MM-DD, default today)")
	accumulateCmd.Flags().Int("days", contract.DefaultDays, "Days before --end to start from when --start is not set")
	accumulateCmd.Flags().Bool("recompute", false, "Measure dates that are already stored again")
	accumulateCmd.Flags().String("workspace-dir", "", "Parent directory of the temporary workspaces (default system temp)")
	if err := viper.BindPFlags(accumulateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding accumulate flags", err)
	}

	// Bind all flags of seriesCmd to Viper
	seriesCmd.Flags().Int("months", schema.DefaultWindowMonths, "Number of calendar months in the window")
	if err := viper.BindPFlags(seriesCmd.Flags()); err != nil {
		contract.LogFatal("Error binding series flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
