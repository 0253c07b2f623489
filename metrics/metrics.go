package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Generations counts generation attempts by outcome:
	// ok, generation_failed, parse_failed or invalid.
	Generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roadmap",
		Name:      "generations_total",
		Help:      "Roadmap generation attempts by outcome.",
	}, []string{"outcome"})

	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "roadmap",
		Name:      "generation_duration_seconds",
		Help:      "Time spent waiting on the text generator.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
	})

	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roadmap",
		Name:      "validation_failures_total",
		Help:      "Rejected roadmap documents by violated rule.",
	}, []string{"rule"})

	HistoryOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roadmap",
		Name:      "history_operations_total",
		Help:      "History store operations by op and result.",
	}, []string{"op", "result"})

	ViewSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "roadmap",
		Name:      "view_sessions_open",
		Help:      "Open interactive view sessions.",
	})
)
