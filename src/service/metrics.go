package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeUnlocked        = "unlocked"
	OutcomeAlreadyUnlocked = "already_unlocked"
	OutcomeNoChallenge     = "no_challenge"
	OutcomeInvalidDay      = "invalid_day"
	OutcomeInProgress      = "in_progress"
	OutcomeUnlockFailed    = "unlock_failed"
	OutcomeStorageError    = "storage_error"
)

// Metrics holds Prometheus metrics for the unlock flow
type Metrics struct {
	UnlockAttempts     *prometheus.CounterVec
	DiscussionDuration *prometheus.HistogramVec
	UnlockLag          prometheus.Histogram
}

// NewMetrics registers the unlock metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UnlockAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "advent",
				Subsystem: "unlock",
				Name:      "attempts_total",
				Help:      "Unlock attempts by outcome",
			},
			[]string{"outcome"},
		),
		DiscussionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "advent",
				Subsystem: "discussion",
				Name:      "create_duration_seconds",
				Help:      "Duration of discussion creation calls",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		UnlockLag: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "advent",
				Subsystem: "unlock",
				Name:      "lag_seconds",
				Help:      "Delay between scheduled and committed unlock time",
				Buckets:   []float64{1, 10, 60, 300, 900, 3600, 6 * 3600, 24 * 3600},
			},
		),
	}
}

func (m *Metrics) observeOutcome(outcome string) {
	if m == nil {
		return
	}
	m.UnlockAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeDiscussion(start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DiscussionDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

func (m *Metrics) observeLag(scheduled, committed time.Time) {
	if m == nil {
		return
	}
	lag := committed.Sub(scheduled).Seconds()
	if lag < 0 {
		lag = 0
	}
	m.UnlockLag.Observe(lag)
}
