// Package metrics defines the Prometheus collectors recorded during a baseline
// run and writes them in the node-exporter textfile format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for a run.
type Metrics struct {
	Registry *prometheus.Registry

	DocumentsRead  *prometheus.CounterVec
	VocabularySize prometheus.Gauge
	Labels         prometheus.Gauge
	StageDuration  *prometheus.GaugeVec
	TestAccuracy   prometheus.Gauge
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		DocumentsRead: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nbbaseline_documents_read_total",
				Help: "Documents read per corpus (train, test).",
			},
			[]string{"corpus"},
		),
		VocabularySize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "nbbaseline_vocabulary_size",
				Help: "Number of tokens in the fitted vocabulary.",
			},
		),
		Labels: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "nbbaseline_labels",
				Help: "Number of distinct labels in the training corpus.",
			},
		),
		StageDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "nbbaseline_stage_duration_seconds",
				Help: "Wall time of each pipeline stage in seconds.",
			},
			[]string{"stage"},
		),
		TestAccuracy: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "nbbaseline_test_accuracy",
				Help: "Fraction of test documents classified correctly.",
			},
		),
	}

	m.Registry.MustRegister(
		m.DocumentsRead,
		m.VocabularySize,
		m.Labels,
		m.StageDuration,
		m.TestAccuracy,
	)

	return m
}

// WriteTextfile writes the current metric values to path, atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
