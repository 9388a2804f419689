package hints

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hintly_hint_requests_total",
		Help: "Hint requests by trigger and outcome",
	}, []string{"trigger", "outcome"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hintly_pipeline_stage_duration_seconds",
		Help:    "Duration of each hint pipeline stage",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"stage"})

	dedupTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hintly_hint_dedup_total",
		Help: "Duplicate hint handling by result",
	}, []string{"result"})

	autoTriggerChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hintly_auto_trigger_checks_total",
		Help: "Auto-trigger polls by decision",
	}, []string{"triggered"})
)
