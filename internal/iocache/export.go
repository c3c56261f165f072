package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/internal/parquet"
)

// ExecuteStoreExport exports every measurement of store to two Parquet files
// named after outputFile.
func ExecuteStoreExport(store contract.MeasurementStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("measurement store is not initialized")
	}

	snapshot := store.Snapshot()
	if snapshot.MeasurementCount() == 0 {
		return errors.New("no measurements found to export")
	}

	measurements, languages := parquet.ConvertHistory(snapshot)
	fmt.Printf("Exporting %d measurements of %d repositories...\n", len(measurements), len(snapshot.Repos))

	measurementsFile := outputFile + ".measurements.parquet"
	if err := parquet.WriteMeasurementsParquet(measurements, measurementsFile); err != nil {
		return fmt.Errorf("failed to write measurements: %w", err)
	}
	fmt.Printf("Exported %d measurements to: %s\n", len(measurements), measurementsFile)

	languagesFile := outputFile + ".languages.parquet"
	if err := parquet.WriteLanguageLinesParquet(languages, languagesFile); err != nil {
		return fmt.Errorf("failed to write language breakdown: %w", err)
	}
	fmt.Printf("Exported %d language rows to: %s\n", len(languages), languagesFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	return nil
}
