package reporting

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/codewithboateng/diguard/internal/model"
)

// WriteText prints a console table of the run's violations followed by a
// one-line summary.
func WriteText(w io.Writer, run *model.Run) error {
	rep := run.Report
	if len(rep.Violations) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SEVERITY\tRULE\tCLASS\tSUBJECT\tMESSAGE")
		for _, v := range rep.Violations {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", v.Severity, v.RuleID, v.Class, v.Subject, v.Message)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	status := "PASSED"
	if rep.HasFailures() {
		status = "FAILED"
	}
	_, err := fmt.Fprintf(w, "%s: run=%s classes=%d violations=%d blocking=%d waived=%d\n",
		status, run.ID, len(run.Classes), len(rep.Violations), rep.Blocking(), rep.Waived)
	return err
}
