package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		activationsTotal,
		sweepDurationSeconds,
		sweepOutcomesTotal,
	)
}

var (
	activationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activations_total",
			Help: "Service activation attempts by result.",
		},
		[]string{"result"}, // 'success', 'failure'
	)

	sweepDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "activation_sweep_duration_seconds",
			Help:    "Duration of one recurring activation sweep.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	sweepOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activation_sweep_outcomes_total",
			Help: "Per-transaction sweep outcomes.",
		},
		[]string{"outcome"}, // 'activated', 'skipped', 'errored'
	)
)

func IncActivation(result string) {
	activationsTotal.WithLabelValues(norm(result)).Inc()
}

func ObserveSweep(durationSeconds float64, activated, skipped, errored int) {
	sweepDurationSeconds.Observe(durationSeconds)
	sweepOutcomesTotal.WithLabelValues("activated").Add(float64(activated))
	sweepOutcomesTotal.WithLabelValues("skipped").Add(float64(skipped))
	sweepOutcomesTotal.WithLabelValues("errored").Add(float64(errored))
}
