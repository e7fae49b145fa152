package server

import (
	"net/http"

	"github.com/mikeboe/blog-post-creator/pkg/blog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the job counters exposed on /metrics. A nil *Metrics is a
// valid no-op.
type Metrics struct {
	registry      *prometheus.Registry
	stageDuration *prometheus.HistogramVec
	jobs          *prometheus.CounterVec
	covers        *prometheus.CounterVec
	inFlight      prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blog_stage_duration_seconds",
			Help:    "Duration of each post generation stage.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage", "outcome"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_jobs_total",
			Help: "Finished post jobs by status.",
		}, []string{"status"}),
		covers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_covers_total",
			Help: "Completed posts by cover outcome.",
		}, []string{"result"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "blog_jobs_in_flight",
			Help: "Post jobs currently running.",
		}),
	}
	m.registry.MustRegister(m.stageDuration, m.jobs, m.covers, m.inFlight)
	return m
}

func (m *Metrics) ObserveStage(ev blog.StageEvent) {
	if m == nil {
		return
	}
	outcome := "ok"
	if ev.Err != nil {
		outcome = "error"
	}
	m.stageDuration.WithLabelValues(string(ev.Stage), outcome).Observe(ev.Duration.Seconds())
}

func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

// JobFinished records a job leaving the running state.
func (m *Metrics) JobFinished(status string, cover bool) {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	m.jobs.WithLabelValues(status).Inc()
	if status != StatusCompleted {
		return
	}
	if cover {
		m.covers.WithLabelValues("generated").Inc()
	} else {
		m.covers.WithLabelValues("skipped").Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
