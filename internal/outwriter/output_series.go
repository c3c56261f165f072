package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintSeriesResult outputs the monthly series, dispatching based on the output format configured.
func PrintSeriesResult(result schema.SeriesResult, cfg *contract.Config, duration time.Duration) error {
	if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteSeriesResult(w, result, cfg, duration)
	}, fmt.Sprintf("Wrote %s series results", cfg.Output)); err != nil {
		return fmt.Errorf("error writing series output: %w", err)
	}
	return nil
}

// WriteSeriesResult writes the series to w in the configured format.
func WriteSeriesResult(w io.Writer, result schema.SeriesResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, result)
	case schema.CSVOut:
		return writeSeriesCSV(w, result)
	default:
		return writeSeriesTable(w, result, cfg, duration)
	}
}

// writeSeriesCSV writes one row per repository and a trailing total row.
// Month columns are keyed by YYYY-MM so multi-year windows stay unambiguous.
func writeSeriesCSV(w io.Writer, result schema.SeriesResult) error {
	header := []string{"repo", "excluded", "created_at"}
	if len(result.Repos) > 0 {
		for _, b := range result.Repos[0].Buckets {
			header = append(header, b.Start.Format("2006-01"))
		}
	} else {
		header = append(header, result.Labels...)
	}

	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range result.Repos {
			row := []string{r.Name, fmt.Sprint(r.Excluded), formatCreated(r.CreatedAt)}
			for _, v := range r.Values() {
				row = append(row, rawCount(v))
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		row := []string{"TOTAL", "false", ""}
		for _, v := range result.Total {
			row = append(row, rawCount(v))
		}
		return cw.Write(row)
	})
}

// writeSeriesTable prints repositories as rows and months as columns, with a total footer.
func writeSeriesTable(w io.Writer, result schema.SeriesResult, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	headers := append([]string{"Repository", "Created"}, result.Labels...)
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	fork := paint(cfg.UseColors, contract.ForkColor)
	bold := paint(cfg.UseColors, contract.TotalColor)
	nameWidth := GetMaxTableNameWidth(cfg, len(result.Labels))

	var data [][]string
	excluded := 0
	for _, r := range result.Repos {
		name := contract.TruncateName(r.Name, nameWidth)
		if r.Excluded {
			name = fork(name + " (fork)")
			excluded++
		}
		row := []string{name, formatCreated(r.CreatedAt)}
		for _, v := range r.Values() {
			row = append(row, formatCount(v))
		}
		data = append(data, row)
	}

	total := []string{bold("TOTAL"), ""}
	for _, v := range result.Total {
		total = append(total, bold(formatCount(v)))
	}
	data = append(data, total)

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Series built in %v for %d repositories (%d excluded).\n",
		duration.Round(time.Millisecond), len(result.Repos), excluded)
	return err
}

func formatCreated(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(schema.DateLayout)
}
