package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "yelpleads"

// Recorder holds the collectors for a single run. A nil *Recorder is valid
// and records nothing.
type Recorder struct {
	reg *prometheus.Registry

	SearchRequests    *prometheus.CounterVec
	SearchDuration    prometheus.Histogram
	BusinessesFetched prometheus.Counter
	Summaries         *prometheus.CounterVec
	Leads             *prometheus.CounterVec
}

// New registers the run collectors on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		reg: reg,
		SearchRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_requests_total",
				Help:      "Business search page requests by outcome",
			},
			[]string{"outcome"},
		),
		SearchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_duration_seconds",
				Help:      "Duration of business search page requests in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		),
		BusinessesFetched: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "businesses_fetched_total",
				Help:      "Directory entries returned across all pages",
			},
		),
		Summaries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "summaries_total",
				Help:      "Online presence summaries requested, by outcome",
			},
			[]string{"outcome"},
		),
		Leads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "leads_total",
				Help:      "Enriched leads by score",
			},
			[]string{"score"},
		),
	}
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// RecordSearch records one page request.
func (r *Recorder) RecordSearch(d time.Duration, businesses int, err error) {
	if r == nil {
		return
	}
	r.SearchRequests.WithLabelValues(outcome(err == nil)).Inc()
	r.SearchDuration.Observe(d.Seconds())
	if err == nil {
		r.BusinessesFetched.Add(float64(businesses))
	}
}

// RecordSummary records one summarization call.
func (r *Recorder) RecordSummary(ok bool) {
	if r == nil {
		return
	}
	r.Summaries.WithLabelValues(outcome(ok)).Inc()
}

// RecordLead records an enriched lead's score.
func (r *Recorder) RecordLead(score int) {
	if r == nil {
		return
	}
	r.Leads.WithLabelValues(strconv.Itoa(score)).Inc()
}

// Registry exposes the underlying registry, e.g. for tests or an HTTP handler.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// WriteTextfile writes every collected metric to path in the text exposition
// format read by the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("metrics: write textfile: %w", err)
	}
	return nil
}
