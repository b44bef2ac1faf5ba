// Package metrics exports Prometheus metrics for popular category runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/jonesrussell/north-cloud/personalization/internal/personalization"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "personalization"

// Recorder implements personalization.Recorder on Prometheus collectors.
type Recorder struct {
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	clicksCounted prometheus.Counter
	winners       *prometheus.CounterVec
	gatherer      prometheus.Gatherer
}

// NewRecorder registers the collectors on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	return NewRecorderWith(reg, reg)
}

// NewRecorderWith registers the collectors on reg and serves them from gatherer.
func NewRecorderWith(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Recorder {
	r := &Recorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Popular category runs by outcome status",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Time to process one session clickstream",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		clicksCounted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clicks_counted_total",
			Help:      "Product page clicks credited to an interest category",
		}),
		winners: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "winners_total",
			Help:      "Popular categories written to sessions",
		}, []string{"category"}),
		gatherer: gatherer,
	}

	reg.MustRegister(r.runs, r.runDuration, r.clicksCounted, r.winners)
	return r
}

// ObserveRun records one run.
func (r *Recorder) ObserveRun(status personalization.Status, elapsed time.Duration) {
	r.runs.WithLabelValues(string(status)).Inc()
	r.runDuration.Observe(elapsed.Seconds())
}

// ClickCounted records a credited click.
func (r *Recorder) ClickCounted() {
	r.clicksCounted.Inc()
}

// WinnerSelected records a stored winner.
func (r *Recorder) WinnerSelected(categoryID string) {
	r.winners.WithLabelValues(categoryID).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
