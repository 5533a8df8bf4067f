package history

import (
	"fmt"
	"io"

	"github.com/huangsam/minigraph/schema"
)

const statusTimeFormat = "2006-01-02 15:04:05"

// PrintHistoryStatus prints history store status information.
func PrintHistoryStatus(w io.Writer, status schema.HistoryStatus) {
	_, _ = fmt.Fprintf(w, "History Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Samples: %d\n", status.TotalSamples)
	_, _ = fmt.Fprintf(w, "Total Entities: %d\n", status.TotalEntities)
	if status.TotalSamples > 0 {
		_, _ = fmt.Fprintf(w, "Oldest Sample: %s\n", status.OldestSample.Format(statusTimeFormat))
		_, _ = fmt.Fprintf(w, "Newest Sample: %s\n", status.NewestSample.Format(statusTimeFormat))
	}
	if status.MigrationLevel > 0 {
		_, _ = fmt.Fprintf(w, "Migration Level: %d (dirty: %t)\n", status.MigrationLevel, status.MigrationsDirty)
	} else {
		_, _ = fmt.Fprintln(w, "Migration Level: unmanaged")
	}
}
