// Package parquet exports measurement history to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/huangsam/lochist/schema"
	"github.com/parquet-go/parquet-go"
)

// Measurement is one (repository, date) measurement.
type Measurement struct {
	// Repo is the repository name relative to the scanned root
	Repo string `parquet:"repo,snappy"`

	// Date is the civil date of the measurement (YYYY-MM-DD)
	Date string `parquet:"date,snappy"`

	// MeasuredOn is the same date as a timestamp at UTC midnight
	MeasuredOn time.Time `parquet:"measured_on,snappy"`

	// Total is the sum of code lines over counted languages
	Total int64 `parquet:"total,snappy"`

	// LanguageCount is the number of languages with a positive count
	LanguageCount int32 `parquet:"language_count,snappy"`

	// Commit is the measured commit id (nullable for zero measurements)
	Commit *string `parquet:"commit,optional,snappy"`

	// Languages is the JSON-encoded language breakdown
	Languages string `parquet:"languages,snappy"`
}

// LanguageLines is one row of the per-language breakdown.
type LanguageLines struct {
	Repo     string `parquet:"repo,snappy"`
	Date     string `parquet:"date,snappy"`
	Language string `parquet:"language,snappy"`
	Lines    int64  `parquet:"lines,snappy"`
}

// WriteMeasurementsParquet writes a slice of Measurement structs to a Parquet file.
func WriteMeasurementsParquet(data []Measurement, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteLanguageLinesParquet writes a slice of LanguageLines structs to a Parquet file.
func WriteLanguageLinesParquet(data []LanguageLines, outputPath string) error {
	return writeParquet(data, outputPath)
}

func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertHistory flattens a history store into measurement and language rows,
// ordered by repository then date then language.
func ConvertHistory(store *schema.HistoryStore) ([]Measurement, []LanguageLines) {
	var measurements []Measurement
	var languages []LanguageLines
	if store == nil {
		return measurements, languages
	}
	for _, repo := range store.RepoNames() {
		h := store.Repos[repo]
		for _, date := range h.Dates() {
			m := h.Measurements[date]
			measurements = append(measurements, convertMeasurement(repo, date, m))

			names := make([]string, 0, len(m.Languages))
			for name := range m.Languages {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				languages = append(languages, LanguageLines{
					Repo:     repo,
					Date:     date,
					Language: name,
					Lines:    int64(m.Languages[name]),
				})
			}
		}
	}
	return measurements, languages
}

func convertMeasurement(repo, date string, m schema.Measurement) Measurement {
	row := Measurement{
		Repo:          repo,
		Date:          date,
		Total:         int64(m.Total),
		LanguageCount: int32(len(m.Languages)),
		Languages:     "{}",
	}
	if t, err := schema.ParseDate(date); err == nil {
		row.MeasuredOn = t
	}
	if m.Commit != "" {
		commit := m.Commit
		row.Commit = &commit
	}
	if len(m.Languages) > 0 {
		if encoded, err := json.Marshal(m.Languages); err == nil {
			row.Languages = string(encoded)
		}
	}
	return row
}
