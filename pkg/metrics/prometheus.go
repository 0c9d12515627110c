package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain/repository.Metrics using Prometheus.
type Recorder struct {
	fetchDuration *prometheus.HistogramVec
	storedTotal   *prometheus.CounterVec
	signalsTotal  *prometheus.CounterVec
	riskLevel     *prometheus.GaugeVec
	errorsTotal   *prometheus.CounterVec
}

// NewRecorder creates a new Prometheus metrics recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		fetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goldlens_fetch_duration_seconds",
				Help:    "Duration of upstream fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		storedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goldlens_observations_stored_total",
				Help: "Total number of observations persisted per series",
			},
			[]string{"series"},
		),
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goldlens_signals_total",
				Help: "Total number of signals computed per indicator and colour",
			},
			[]string{"code", "signal"},
		),
		riskLevel: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "goldlens_risk_level",
				Help: "Current aggregate risk level, one-hot per level",
			},
			[]string{"level"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goldlens_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordFetch records the duration of one upstream fetch.
func (r *Recorder) RecordFetch(source string, seconds float64) {
	r.fetchDuration.WithLabelValues(source).Observe(seconds)
}

// RecordStored records observations persisted for a series.
func (r *Recorder) RecordStored(series string, n int) {
	r.storedTotal.WithLabelValues(series).Add(float64(n))
}

// RecordSignal records a computed signal.
func (r *Recorder) RecordSignal(code string, signal string) {
	r.signalsTotal.WithLabelValues(code, signal).Inc()
}

// RecordRiskLevel sets the one-hot risk level gauge.
func (r *Recorder) RecordRiskLevel(level string) {
	for _, l := range []string{"LOW", "MEDIUM", "HIGH"} {
		v := 0.0
		if l == level {
			v = 1.0
		}
		r.riskLevel.WithLabelValues(l).Set(v)
	}
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
