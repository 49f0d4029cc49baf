// Package observability exposes Prometheus metrics for the analysis
// pipeline and the catalog.
package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
)

// Metrics implements ports.AnalysisRecorder and prometheus.Collector.
type Metrics struct {
	triggers         *prometheus.CounterVec
	outcomes         *prometheus.CounterVec
	superseded       prometheus.Counter
	classifyDuration prometheus.Histogram
	inFlight         prometheus.Gauge
	catalogSongs     *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with registry.
func NewMetrics(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		triggers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analysis_triggers_total",
				Help: "Analysis triggers partitioned by whether they were accepted.",
			},
			[]string{"result"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analysis_outcomes_total",
				Help: "Applied analysis outcomes by terminal status and error kind.",
			},
			[]string{"status", "kind"},
		),
		superseded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "analysis_superseded_total",
			Help: "Outcomes discarded because a newer request replaced them.",
		}),
		classifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "classify_duration_seconds",
			Help:    "Time spent waiting for the emotion classifier.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "analysis_in_flight",
			Help: "Classifier calls currently awaited.",
		}),
		catalogSongs: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "catalog_songs",
				Help: "Songs in the active catalog snapshot by language.",
			},
			[]string{"language"},
		),
	}
	if registry != nil {
		if err := registry.Register(m); err != nil {
			return nil, fmt.Errorf("observability: register metrics: %w", err)
		}
	}
	return m, nil
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.triggers.Describe(ch)
	m.outcomes.Describe(ch)
	ch <- m.superseded.Desc()
	ch <- m.classifyDuration.Desc()
	ch <- m.inFlight.Desc()
	m.catalogSongs.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.triggers.Collect(ch)
	m.outcomes.Collect(ch)
	ch <- m.superseded
	m.classifyDuration.Collect(ch)
	ch <- m.inFlight
	m.catalogSongs.Collect(ch)
}

func (m *Metrics) TriggerAccepted() {
	m.triggers.WithLabelValues("accepted").Inc()
}

func (m *Metrics) TriggerRejected(kind domain.ErrorKind) {
	m.triggers.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) Outcome(status domain.Status, kind domain.ErrorKind) {
	label := string(kind)
	if label == "" {
		label = "none"
	}
	m.outcomes.WithLabelValues(status.String(), label).Inc()
}

func (m *Metrics) Superseded() {
	m.superseded.Inc()
}

func (m *Metrics) ClassifyDuration(d time.Duration) {
	m.classifyDuration.Observe(d.Seconds())
}

func (m *Metrics) InFlight(delta int) {
	m.inFlight.Add(float64(delta))
}

// ObserveCatalog records per-language song counts for a new snapshot.
func (m *Metrics) ObserveCatalog(c *domain.Catalog) {
	m.catalogSongs.Reset()
	for _, lang := range c.Languages() {
		m.catalogSongs.WithLabelValues(lang).Set(float64(c.Count(lang)))
	}
}
