// Package metrics exposes pipeline timings, row counts and scores in the Prometheus text format.
package metrics

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tagpipe"

// Recorder collects the metrics of a pipeline run.
type Recorder struct {
	mutex    sync.Mutex
	registry *prometheus.Registry

	StageDuration *prometheus.GaugeVec
	Rows          *prometheus.CounterVec
	Scores        *prometheus.GaugeVec
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		StageDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Wall time of the last run of each stage.",
			}, []string{"stage"}),
		Rows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_total",
				Help:      "Rows processed by each stage and split.",
			}, []string{"stage", "split"}),
		Scores: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "score",
				Help:      "Evaluation measures of each split.",
			}, []string{"split", "measure"}),
	}
	r.registry.MustRegister(r.StageDuration, r.Rows, r.Scores)
	return r
}

// Stage records how long a stage took.
func (r *Recorder) Stage(stage string, d time.Duration) {
	r.StageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// AddRows counts n rows of split processed by stage.
func (r *Recorder) AddRows(stage, split string, n int) {
	r.Rows.WithLabelValues(stage, split).Add(float64(n))
}

// Score records an evaluation measure.
func (r *Recorder) Score(split, measure string, v float64) {
	r.Scores.WithLabelValues(split, measure).Set(v)
}

// Gatherer returns the registry holding the metrics.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the metrics to path for the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return errors.Wrap(prometheus.WriteToTextfile(path, r.registry), "writing metrics")
}
