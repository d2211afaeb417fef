package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts commit and search outcomes. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	commits       *prometheus.CounterVec
	searches      *prometheus.CounterVec
	swallowed     *prometheus.CounterVec
	draftsCreated *prometheus.CounterVec
}

// New creates a recorder with its own registry, including Go and process collectors
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		commits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ensamble_commits_total",
				Help: "Total number of draft commits by flow and outcome category",
			},
			[]string{"flow", "outcome"},
		),
		searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ensamble_directory_searches_total",
				Help: "Total number of directory searches by result",
			},
			[]string{"result"},
		),
		swallowed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ensamble_swallowed_upload_failures_total",
				Help: "Total number of cosmetic uploads that failed without aborting a commit",
			},
			[]string{"bucket"},
		),
		draftsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ensamble_drafts_created_total",
				Help: "Total number of drafts opened by flow",
			},
			[]string{"flow"},
		),
	}

	r.registry.MustRegister(
		r.commits,
		r.searches,
		r.swallowed,
		r.draftsCreated,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Commit records the outcome of a commit; outcome is "ok" or an error category
func (r *Recorder) Commit(flow, outcome string) {
	if r == nil {
		return
	}
	r.commits.WithLabelValues(flow, outcome).Inc()
}

// Search records a directory search result: "accepted", "stale" or "skipped"
func (r *Recorder) Search(result string) {
	if r == nil {
		return
	}
	r.searches.WithLabelValues(result).Inc()
}

// SwallowedUpload records a cosmetic upload failure that did not abort a commit
func (r *Recorder) SwallowedUpload(bucket string) {
	if r == nil {
		return
	}
	r.swallowed.WithLabelValues(bucket).Inc()
}

// DraftCreated records a new draft session
func (r *Recorder) DraftCreated(flow string) {
	if r == nil {
		return
	}
	r.draftsCreated.WithLabelValues(flow).Inc()
}
