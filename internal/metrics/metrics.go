package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "learnforge"

// Collector is a prometheus.Collector for HTTP traffic and enrollment
// activity.
type Collector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	inflight         prometheus.Gauge
	enrollments      prometheus.Counter
	completions      prometheus.Counter
	reindexRuns      *prometheus.CounterVec
	reindexedCourses prometheus.Gauge
}

func NewCollector() *Collector {
	return &Collector{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "http_requests_total",
				Help:      "The number of HTTP requests served.",
			}, []string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "The time taken to serve an HTTP request.",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			}, []string{"method", "route"},
		),
		inflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "http_requests_inflight",
				Help:      "The number of HTTP requests being served.",
			},
		),
		enrollments: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "enrollments_created_total",
				Help:      "The number of enrollments created.",
			},
		),
		completions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "content_completions_total",
				Help:      "The number of content items newly marked complete.",
			},
		),
		reindexRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "search_reindex_runs_total",
				Help:      "The number of search index rebuilds by outcome.",
			}, []string{"status"},
		),
		reindexedCourses: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "search_reindexed_courses",
				Help:      "The number of courses written by the last successful rebuild.",
			},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.requestsTotal.Describe(ch)
	c.requestDuration.Describe(ch)
	c.inflight.Describe(ch)
	c.enrollments.Describe(ch)
	c.completions.Describe(ch)
	c.reindexRuns.Describe(ch)
	c.reindexedCourses.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.requestsTotal.Collect(ch)
	c.requestDuration.Collect(ch)
	c.inflight.Collect(ch)
	c.enrollments.Collect(ch)
	c.completions.Collect(ch)
	c.reindexRuns.Collect(ch)
	c.reindexedCourses.Collect(ch)
}

func (c *Collector) ObserveRequest(method, route, status string, d time.Duration) {
	c.requestsTotal.WithLabelValues(method, route, status).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) InflightInc() { c.inflight.Inc() }
func (c *Collector) InflightDec() { c.inflight.Dec() }

func (c *Collector) EnrollmentCreated() { c.enrollments.Inc() }
func (c *Collector) ContentCompleted()  { c.completions.Inc() }

func (c *Collector) ReindexSucceeded(courses int) {
	c.reindexRuns.WithLabelValues("ok").Inc()
	c.reindexedCourses.Set(float64(courses))
}

func (c *Collector) ReindexFailed() {
	c.reindexRuns.WithLabelValues("error").Inc()
}
