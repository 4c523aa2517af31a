// Package metrics exposes Prometheus collectors for searches, oracle calls and
// the load hook. Every method is safe on a nil *Metrics, so callers that do not
// collect anything pass nil.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"faultline/internal/oracle"
)

// File results recorded by FileAnalyzed.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
	ResultTimeout = "timeout"
	ResultError   = "error"
)

// Metrics holds the collectors registered by New.
type Metrics struct {
	oracleCalls     prometheus.Counter
	searchDuration  prometheus.Histogram
	searchTimeouts  prometheus.Counter
	hookIntercepted prometheus.Counter
	files           *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		oracleCalls: factory.NewCounter(prometheus.CounterOpts{
			Name: "faultline_oracle_calls_total",
			Help: "Total validity questions sent to the syntax oracle",
		}),
		searchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "faultline_search_duration_seconds",
			Help:    "Wall-clock duration of invalid block searches",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}),
		searchTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "faultline_search_timeouts_total",
			Help: "Total searches abandoned after exceeding the timeout",
		}),
		hookIntercepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "faultline_hook_intercepted_total",
			Help: "Total load errors intercepted and diagnosed by the load hook",
		}),
		files: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "faultline_files_total",
			Help: "Total analyzed files by result",
		}, []string{"result"}),
	}
}

// OracleCall counts one oracle question.
func (m *Metrics) OracleCall() {
	if m == nil {
		return
	}
	m.oracleCalls.Inc()
}

// SearchFinished observes the duration of a completed search.
func (m *Metrics) SearchFinished(d time.Duration) {
	if m == nil {
		return
	}
	m.searchDuration.Observe(d.Seconds())
}

// SearchTimedOut counts an abandoned search.
func (m *Metrics) SearchTimedOut() {
	if m == nil {
		return
	}
	m.searchTimeouts.Inc()
}

// HookIntercepted counts a load error diagnosed by the hook.
func (m *Metrics) HookIntercepted() {
	if m == nil {
		return
	}
	m.hookIntercepted.Inc()
}

// FileAnalyzed counts one file under result (ResultValid, ResultInvalid...).
func (m *Metrics) FileAnalyzed(result string) {
	if m == nil {
		return
	}
	m.files.WithLabelValues(result).Inc()
}

// WriteTextfile dumps everything g gathers to path in the node exporter
// textfile format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}

// instrumented counts every question that reaches the wrapped oracle.
type instrumented struct {
	next oracle.Oracle
	m    *Metrics
}

// InstrumentOracle wraps o so that every call is counted in m. The wrapper
// keeps the oracle.Explainer capability; oracles that cannot explain return a
// bare verdict from Check. A nil m returns o unchanged.
func InstrumentOracle(o oracle.Oracle, m *Metrics) oracle.Oracle {
	if m == nil {
		return o
	}
	return &instrumented{next: o, m: m}
}

func (i *instrumented) Valid(src string) (bool, error) {
	return i.ValidContext(context.Background(), src)
}

func (i *instrumented) ValidContext(ctx context.Context, src string) (bool, error) {
	i.m.OracleCall()
	return oracle.ValidContext(ctx, i.next, src)
}

func (i *instrumented) Check(src string) (oracle.Report, error) {
	return i.CheckContext(context.Background(), src)
}

func (i *instrumented) CheckContext(ctx context.Context, src string) (oracle.Report, error) {
	i.m.OracleCall()
	return oracle.CheckContext(ctx, i.next, src)
}
