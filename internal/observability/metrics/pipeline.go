package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics counts the interesting events of the analysis pipeline.
type PipelineMetrics struct {
	registry *prometheus.Registry

	submissionsTotal prometheus.Counter
	cacheHitsTotal   prometheus.Counter
	jobsTotal        *prometheus.CounterVec
	fallbacksTotal   prometheus.Counter
	quotaDeniedTotal prometheus.Counter
}

func NewPipelineMetrics() *PipelineMetrics {
	registry := prometheus.NewRegistry()

	submissionsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rma",
		Subsystem: "pipeline",
		Name:      "submissions_total",
		Help:      "Total analysis submissions accepted (cache hits included).",
	})
	cacheHitsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rma",
		Subsystem: "pipeline",
		Name:      "cache_hits_total",
		Help:      "Submissions answered from the fingerprint cache.",
	})
	jobsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rma",
		Subsystem: "pipeline",
		Name:      "jobs_total",
		Help:      "Background analysis jobs by terminal status.",
	}, []string{"status"})
	fallbacksTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rma",
		Subsystem: "pipeline",
		Name:      "evaluator_fallbacks_total",
		Help:      "Analyses that fell back to the keyword evaluator.",
	})
	quotaDeniedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rma",
		Subsystem: "pipeline",
		Name:      "quota_denied_total",
		Help:      "External evaluator attempts rejected by the daily quota.",
	})

	registry.MustRegister(submissionsTotal, cacheHitsTotal, jobsTotal, fallbacksTotal, quotaDeniedTotal)

	return &PipelineMetrics{
		registry:         registry,
		submissionsTotal: submissionsTotal,
		cacheHitsTotal:   cacheHitsTotal,
		jobsTotal:        jobsTotal,
		fallbacksTotal:   fallbacksTotal,
		quotaDeniedTotal: quotaDeniedTotal,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) Submission()  { m.submissionsTotal.Inc() }
func (m *PipelineMetrics) CacheHit()    { m.cacheHitsTotal.Inc() }
func (m *PipelineMetrics) Fallback()    { m.fallbacksTotal.Inc() }
func (m *PipelineMetrics) QuotaDenied() { m.quotaDeniedTotal.Inc() }

func (m *PipelineMetrics) JobFinished(status string) {
	m.jobsTotal.WithLabelValues(status).Inc()
}
