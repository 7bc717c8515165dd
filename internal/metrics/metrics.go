// Package metrics exposes pipeline counters and timings in Prometheus form.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docparse"

// Metrics holds the pipeline collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	classified      *prometheus.CounterVec
	extracted       *prometheus.CounterVec
	fieldsExtracted *prometheus.HistogramVec
	failures        *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	queueDepth      prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		classified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Documents classified, by detected template and unforeseen flag.",
		}, []string{"template", "unforeseen"}),
		extracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Records extracted, by rule set.",
		}, []string{"rule_set"}),
		fieldsExtracted: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fields_extracted",
			Help:      "Non-null fields per extracted record.",
			Buckets:   prometheus.LinearBuckets(0, 4, 10),
		}, []string{"rule_set"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Collaborator failures, by stage.",
		}, []string{"stage"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent per pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Documents waiting in the worker queue.",
		}),
	}
	m.registry.MustRegister(
		m.classified, m.extracted, m.fieldsExtracted,
		m.failures, m.stageDuration, m.queueDepth,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) RecordClassification(template string, unforeseen bool) {
	if m == nil {
		return
	}
	m.classified.WithLabelValues(template, strconv.FormatBool(unforeseen)).Inc()
}

func (m *Metrics) RecordExtraction(ruleSet string, fields int) {
	if m == nil {
		return
	}
	m.extracted.WithLabelValues(ruleSet).Inc()
	m.fieldsExtracted.WithLabelValues(ruleSet).Observe(float64(fields))
}

func (m *Metrics) RecordFailure(stage string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(stage).Inc()
}

// ObserveStage records the time since start for stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
