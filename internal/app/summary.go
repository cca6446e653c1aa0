package app

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/specialistvlad/parsegrid/internal/engine"
)

// writeSummary prints one line per transformation followed by the totals.
func writeSummary(w io.Writer, report *engine.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "\nJob %s\n", report.RunID)
	fmt.Fprintln(tw, "#\tPARSER\tOPERATION\tORIGIN\tOUTCOME")
	for _, res := range report.Results {
		d := res.Descriptor
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", d.Index, d.ParserType, d.Operation, d.Origin, res.Outcome)
	}
	fmt.Fprintf(tw, "\n%d succeeded, %d failed\n", report.Succeeded, report.Failed)
	return tw.Flush()
}
