package driver

import (
	"encoding/json"
	"fmt"

	"faultline/internal/diag"
	"faultline/internal/observ"
	"faultline/internal/source"
)

// finishTimings stores the phase report and mirrors it into the bag as an
// OBS6001 info diagnostic. The note carries the report as JSON so that
// machine formats can pick it up; the bag limit does not apply.
func (r *Result) finishTimings(obs *phaseObserver) {
	r.Timing = obs.report()
	if r.Timing == nil || r.Bag == nil {
		return
	}
	payload, err := json.Marshal(struct {
		Path string `json:"path,omitempty"`
		*observ.Report
	}{Path: r.Path, Report: r.Timing})
	if err != nil {
		return
	}

	msg := fmt.Sprintf("timings: total %.2f ms", r.Timing.TotalMS)
	if slow, ok := r.Timing.Slowest(); ok {
		msg += fmt.Sprintf(", slowest %s %.2f ms", slow.Name, slow.DurationMS)
	}
	sp := source.Span{}
	if r.File != nil {
		sp.File = r.File.ID
	}
	r.Bag.Force(diag.New(diag.SevInfo, diag.ObsTimings, sp, msg).WithNote(sp, string(payload)))
}
