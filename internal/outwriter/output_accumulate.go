package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/lochist/internal/contract"
	"github.com/huangsam/lochist/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintAccumulateSummary outputs the per-repository outcome counts of an accumulation run.
func PrintAccumulateSummary(summary schema.AccumulateSummary, cfg *contract.Config, duration time.Duration) error {
	if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteAccumulateSummary(w, summary, cfg, duration)
	}, fmt.Sprintf("Wrote %s accumulation summary", cfg.Output)); err != nil {
		return fmt.Errorf("error writing accumulation summary: %w", err)
	}
	return nil
}

// WriteAccumulateSummary writes the summary to w in the configured format.
func WriteAccumulateSummary(w io.Writer, summary schema.AccumulateSummary, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, summary)
	case schema.CSVOut:
		return writeCSVWithHeader(w, []string{"repo", "cached", "zero", "measured", "skipped", "save_error"}, func(cw *csv.Writer) error {
			for _, r := range summary.Repos {
				row := []string{
					r.Name,
					strconv.Itoa(r.Cached),
					strconv.Itoa(r.Zero),
					strconv.Itoa(r.Measured),
					strconv.Itoa(r.Skipped),
					r.SaveErr,
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		return writeAccumulateTable(w, summary, cfg, duration)
	}
}

func writeAccumulateTable(w io.Writer, summary schema.AccumulateSummary, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Repository", "Cached", "Zero", "Measured", "Skipped", "Saved"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	warn := paint(cfg.UseColors, contract.WarnColor)
	var data [][]string
	for _, r := range summary.Repos {
		saved := "yes"
		if r.SaveErr != "" {
			saved = warn("failed")
		}
		skipped := strconv.Itoa(r.Skipped)
		if r.Skipped > 0 {
			skipped = warn(skipped)
		}
		data = append(data, []string{
			contract.TruncateName(r.Name, 40),
			strconv.Itoa(r.Cached),
			strconv.Itoa(r.Zero),
			strconv.Itoa(r.Measured),
			skipped,
			saved,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	status := "completed"
	if summary.Interrupted {
		status = warn("interrupted")
	}
	_, err := fmt.Fprintf(w, "Accumulation %s in %v for %s to %s. Store backend: %s\n",
		status, duration.Round(time.Millisecond), summary.Start, summary.End, cfg.StoreBackend)
	return err
}
