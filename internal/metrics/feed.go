package metrics

import "github.com/prometheus/client_golang/prometheus"

// FeedMetrics holds Prometheus metrics for feed reads.
type FeedMetrics struct {
	RequestsTotal prometheus.Counter
	PageSize      prometheus.Histogram
	QueryDuration prometheus.Histogram
}

// NewFeedMetrics creates and registers feed metrics on the given registry.
func NewFeedMetrics(reg prometheus.Registerer) *FeedMetrics {
	m := &FeedMetrics{
		RequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_requests_total",
			Help:      "Total number of feed page requests.",
		}),
		PageSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_page_size",
			Help:      "Number of posts returned per feed page.",
			Buckets:   []float64{1, 5, 10, 20, 30, 50},
		}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_query_duration_seconds",
			Help:      "Duration of feed page queries in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
	}

	reg.MustRegister(m.RequestsTotal, m.PageSize, m.QueryDuration)
	return m
}
