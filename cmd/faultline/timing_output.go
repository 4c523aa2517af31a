package main

import (
	"fmt"
	"io"
	"strings"

	"faultline/internal/driver"
	"faultline/internal/observ"
)

// printTimings writes one line per analyzed file with the duration of every
// phase and the search counters, then a sum when several files were checked.
func printTimings(out io.Writer, results []*driver.Result, opts renderOptions) {
	var (
		reports []observ.Report
		ticks   int
		calls   int64
	)
	for _, r := range results {
		if r.Timing == nil {
			continue
		}
		reports = append(reports, *r.Timing)
		ticks += r.Stats.Ticks
		calls += r.Stats.OracleCalls
		fmt.Fprintf(out, "%s: %s (%d ticks, %d oracle calls)\n",
			displayPath(r, opts), timingLine(*r.Timing), r.Stats.Ticks, r.Stats.OracleCalls)
	}
	if len(reports) > 1 {
		fmt.Fprintf(out, "all %d files: %s (%d ticks, %d oracle calls)\n",
			len(reports), timingLine(observ.Sum(reports...)), ticks, calls)
	}
}

func timingLine(r observ.Report) string {
	parts := make([]string, 0, len(r.Phases)+1)
	for _, p := range r.Phases {
		parts = append(parts, fmt.Sprintf("%s %.1f ms", p.Name, p.DurationMS))
	}
	parts = append(parts, fmt.Sprintf("total %.1f ms", r.TotalMS))
	return strings.Join(parts, ", ")
}
