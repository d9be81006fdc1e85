package metrics

import "github.com/prometheus/client_golang/prometheus"

// VoteMetrics holds Prometheus metrics for the vote pipeline.
type VoteMetrics struct {
	VotesProcessed  *prometheus.CounterVec
	CastDuration    prometheus.Histogram
	VotesByOutcome  *prometheus.CounterVec
	ConflictRetries prometheus.Counter
}

// NewVoteMetrics creates and registers vote pipeline metrics on the given registry.
func NewVoteMetrics(reg prometheus.Registerer) *VoteMetrics {
	m := &VoteMetrics{
		VotesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_processed_total",
			Help:      "Total number of vote requests processed, by result.",
		}, []string{"result"}),
		CastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "vote_cast_duration_seconds",
			Help:      "Duration of vote transactions in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		VotesByOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_applied_total",
			Help:      "Total number of applied votes, by outcome.",
		}, []string{"outcome"}), // created, flipped, noop
		ConflictRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_conflict_retries_total",
			Help:      "Total number of vote transactions retried after a serialization conflict.",
		}),
	}

	reg.MustRegister(m.VotesProcessed, m.CastDuration, m.VotesByOutcome, m.ConflictRetries)
	return m
}
