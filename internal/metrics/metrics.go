package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels completed sweeps and dispatches.
	OutcomeSuccess = "success"
	// OutcomeError labels failed sweeps and dispatches.
	OutcomeError = "error"
)

var (
	sweepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "asset_sentinel",
			Name:      "sweeps_total",
			Help:      "Monitoring sweeps executed, partitioned by sweep name and outcome.",
		},
		[]string{"sweep", "outcome"},
	)

	sweepDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "asset_sentinel",
			Name:      "sweep_seconds",
			Help:      "Monitoring sweep latency in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"sweep"},
	)

	alertsTriggeredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "asset_sentinel",
			Name:      "alerts_triggered_total",
			Help:      "Alerts raised, partitioned by severity.",
		},
		[]string{"severity"},
	)

	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "asset_sentinel",
			Name:      "notifications_total",
			Help:      "Notification deliveries, partitioned by channel and outcome.",
		},
		[]string{"channel", "outcome"},
	)
)

// Register attaches asset-sentinel collectors to the supplied registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		sweepsTotal,
		sweepDurationSeconds,
		alertsTriggeredTotal,
		notificationsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveSweep records one monitoring pass.
func ObserveSweep(sweep string, duration time.Duration, outcome string) {
	if outcome != OutcomeError {
		outcome = OutcomeSuccess
	}
	sweepsTotal.WithLabelValues(sweep, outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	sweepDurationSeconds.WithLabelValues(sweep).Observe(duration.Seconds())
}

// ObserveAlertTriggered counts a raised alert.
func ObserveAlertTriggered(severity string) {
	alertsTriggeredTotal.WithLabelValues(severity).Inc()
}

// ObserveNotification counts a notification delivery attempt.
func ObserveNotification(channel, outcome string) {
	if outcome != OutcomeError {
		outcome = OutcomeSuccess
	}
	notificationsTotal.WithLabelValues(channel, outcome).Inc()
}
