package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wricardo/mcp-training/racetrack/game/engine"
)

var (
	// analysisTotal counts analyses by result
	analysisTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "racetrack_analysis_total",
		Help: "Total cheat analyses by result",
	}, []string{"result"})

	// analysisDuration tracks counting latency
	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "racetrack_analysis_duration_seconds",
		Help:    "Cheat analysis duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
	})

	// cheatsCounted tracks the size of each qualifying set
	cheatsCounted = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "racetrack_cheats_counted",
		Help:    "Number of qualifying cheats per analysis",
		Buckets: prometheus.ExponentialBuckets(1, 4, 12),
	})

	// engineBuilds counts distance field computations
	engineBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "racetrack_engine_builds_total",
		Help: "Total cheat engine builds (two BFS passes each)",
	})
)

// resultLabel classifies an analysis error for the result label
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, engine.ErrInvalidBudget), errors.Is(err, engine.ErrMalformedGrid):
		return "invalid"
	case errors.Is(err, engine.ErrUnreachableGoal):
		return "unreachable"
	default:
		return "error"
	}
}
