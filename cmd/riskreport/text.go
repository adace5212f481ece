package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/riskdash/riskdash/internal/report"
	"github.com/riskdash/riskdash/pkg/types"
)

// writeText prints the ranking table, the failures if any, and the tallies.
func writeText(w io.Writer, rep *report.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCOMPONENT\tSCORE\tLEVEL\tBEST\tLIKELY\tWORST")
	for i, e := range rep.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%s\t%.1f\t%.1f\t%.1f\n",
			i+1, e.Component.Name, e.Component.RiskScore, e.Component.RiskLevel,
			e.Timeline.BestMonths, e.Timeline.LikelyMonths, e.Timeline.WorstMonths)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(rep.Failures) > 0 {
		fmt.Fprintf(w, "\nFailed (%d):\n", len(rep.Failures))
		for _, f := range rep.Failures {
			fmt.Fprintf(w, "  #%d %s [%s]: %s\n", f.Index, f.Name, f.Stage, f.Error)
		}
	}

	s := rep.Summary()
	_, err := fmt.Fprintf(w, "\nTotal: %d | Critical: %d | High: %d | Medium: %d | Low: %d\n",
		s.Total, s.Critical, s.High, s.ByLevel[types.LevelMedium], s.ByLevel[types.LevelLow])
	return err
}
