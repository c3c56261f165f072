package iocache

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/lochist/schema"
)

// PrintStoreStatus prints measurement store status information.
func PrintStoreStatus(w io.Writer, status schema.StoreStatus) {
	_, _ = fmt.Fprintf(w, "Store Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Location: %s\n", status.Location)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Repositories: %s\n", humanize.Comma(int64(status.TotalRepos)))
	_, _ = fmt.Fprintf(w, "Measurements: %s\n", humanize.Comma(int64(status.TotalMeasurement)))
	if status.TotalMeasurement > 0 {
		_, _ = fmt.Fprintf(w, "Oldest Date: %s\n", status.OldestDate)
		_, _ = fmt.Fprintf(w, "Newest Date: %s\n", status.NewestDate)
	}
	if !status.LastUpdated.IsZero() {
		_, _ = fmt.Fprintf(w, "Last Updated: %s (%s)\n",
			status.LastUpdated.Local().Format("2006-01-02 15:04:05"), humanize.Time(status.LastUpdated))
	}
	_, _ = fmt.Fprintf(w, "Size: %s\n", humanize.Bytes(uint64(max(status.SizeBytes, 0))))
}
