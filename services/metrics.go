package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the counters the bracket engine exports on /metrics.
type Metrics struct {
	Registry *prometheus.Registry

	BracketsBuilt    prometheus.Counter
	ResultsReported  *prometheus.CounterVec
	TournamentsEnded prometheus.Counter
	AwardsIssued     *prometheus.CounterVec
	RewardErrors     prometheus.Counter
	ReconcilerRuns   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		BracketsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "brackets_built_total",
			Help:      "Brackets generated for tournaments.",
		}),
		ResultsReported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "match_results_total",
			Help:      "Reported match results by outcome.",
		}, []string{"outcome"}),
		TournamentsEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "tournaments_finished_total",
			Help:      "Tournaments completed by a final result.",
		}),
		AwardsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "awards_issued_total",
			Help:      "Badges awarded by rule position.",
		}, []string{"position"}),
		RewardErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "reward_dispatch_errors_total",
			Help:      "Failures swallowed by the reward dispatcher.",
		}),
		ReconcilerRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "reward_reconciler_runs_total",
			Help:      "Reward reconciliation passes by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.BracketsBuilt,
		m.ResultsReported,
		m.TournamentsEnded,
		m.AwardsIssued,
		m.RewardErrors,
		m.ReconcilerRuns,
	)
	return m
}
