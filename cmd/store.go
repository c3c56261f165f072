package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/internal/iocache"
	"github.com/huangsam/lochist/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeConfig loads the store-related settings without validating the repository path.
func storeConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("store-backend")))
	if backend == "" {
		backend = schema.JSONBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be json, sqlite, mysql, postgresql", backend)
	}
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.StoreBackend = backend
	cfg.StorePath = viper.GetString("store")
	cfg.StoreDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// storeSetup loads minimal configuration needed for store operations and opens the store.
func storeSetup() error {
	if err := storeConfig(); err != nil {
		return err
	}
	if err := iocache.InitStore(cfg.StoreBackend, cfg.StorePath, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeConfigWrapper loads store settings without opening the store, so that
// clear and migrate work on stores that cannot be opened yet.
func storeConfigWrapper(_ *cobra.Command, _ []string) error {
	return storeConfig()
}

// storeCmd focused on measurement store management.
//
// Note: Store subcommands use minimal initialization instead of the full
// sharedSetup. This avoids repository path validation for simple store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the measurement store",
	Long: `Manage the store that keeps one measurement per repository and day.

Supported backends: JSON file (default), SQLite, MySQL, PostgreSQL

Subcommands:
  status  - Show store statistics and connection info
  clear   - Remove all stored measurements
  export  - Export measurements to Parquet for analytics
  migrate - Run database schema migrations

Examples:
  # Check store status
  lochist store status

  # Export for analysis in pandas/DuckDB
  lochist store export --output-file loc`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show the backend, location, number of repositories and measurements,
the covered date range and the size of the measurement store.

Examples:
  lochist store status
  LOCHIST_STORE_BACKEND=sqlite lochist store status`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetStore().Status()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		iocache.PrintStoreStatus(os.Stdout, status)

		if cfg.StoreBackend != schema.JSONBackend {
			v, dirty, err := iocache.StoreVersion(cfg.StoreBackend, cfg.StoreDBConnect)
			if err != nil {
				contract.LogWarn("Failed to read schema version", err)
				return
			}
			fmt.Printf("Schema Version: %d", v)
			if dirty {
				fmt.Print(" (dirty)")
			}
			fmt.Println()
		}
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored measurements",
	Long: `Delete all measurements from the configured backend.

For JSON and SQLite: Deletes the file
For MySQL/PostgreSQL: Drops the store tables and the migration history

Examples:
  # Clear the JSON store (default)
  lochist store clear

  # Clear a MySQL store (set connection string via env variable)
  LOCHIST_STORE_BACKEND=mysql LOCHIST_STORE_DB_CONNECT="..." lochist store clear`,
	PreRunE: storeConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearStore(cfg.StoreBackend, cfg.StorePath, cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// storeExportCmd exports the store to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored measurements to Parquet files",
	Long: `Write every stored measurement to two Parquet files:

  <output-file>.measurements.parquet - one row per repository and day
  <output-file>.languages.parquet    - one row per repository, day and language

Examples:
  lochist store export --output-file loc
  duckdb -c "SELECT repo, max(total) FROM 'loc.measurements.parquet' GROUP BY repo"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteStoreExport(iocache.Manager.GetStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export store", err)
		}
	},
}

// storeMigrateCmd runs database migrations.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations for SQL backends",
	Long: `Apply or roll back the schema migrations of a SQL store.

Examples:
  # Migrate to the latest version
  lochist store migrate --store-backend sqlite

  # Roll back everything
  lochist store migrate --store-backend postgresql --target-version 0`,
	PreRunE: storeConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		target := viper.GetInt("target-version")
		if err := iocache.MigrateStore(cfg.StoreBackend, cfg.StoreDBConnect, target); err != nil {
			contract.LogFatal("Failed to migrate store", err)
		}
	},
}
