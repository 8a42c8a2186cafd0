package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsTotal    *prometheus.CounterVec
	trajectories prometheus.Counter
	runDuration  prometheus.Histogram
	activeRuns   prometheus.Gauge
	errorsTotal  *prometheus.CounterVec
}

// New registers the simulation metrics on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the simulation metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		runsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portsim_runs_total",
				Help: "Total number of finished simulation runs",
			},
			[]string{"status"},
		),
		trajectories: f.NewCounter(prometheus.CounterOpts{
			Name: "portsim_trajectories_total",
			Help: "Total number of simulated trajectories",
		}),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "portsim_run_duration_seconds",
			Help:    "Wall time of simulation runs",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
		activeRuns: f.NewGauge(prometheus.GaugeOpts{
			Name: "portsim_active_runs",
			Help: "Number of runs currently executing",
		}),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portsim_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

func (r *Recorder) RunStarted() {
	r.activeRuns.Inc()
}

// RunFinished records a run leaving the active set with the given status.
func (r *Recorder) RunFinished(status string, elapsed time.Duration) {
	r.activeRuns.Dec()
	r.runsTotal.WithLabelValues(status).Inc()
	r.runDuration.Observe(elapsed.Seconds())
}

func (r *Recorder) TrajectoriesCompleted(n int) {
	r.trajectories.Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// Nop discards every observation.
type Nop struct{}

func (Nop) RunStarted() {}
func (Nop) RunFinished(string, time.Duration) {}
func (Nop) TrajectoriesCompleted(int) {}
func (Nop) RecordError(string) {}
