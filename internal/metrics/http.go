package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics observes the transport layer. A single histogram labeled by
// method, route, and status carries both latency and request counts (the
// histogram's _count series); a gauge tracks requests currently in flight.
type HTTPMetrics struct {
	Requests *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		Requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, labeled by method, route, and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "HTTP requests currently being handled.",
		}),
	}

	reg.MustRegister(m.Requests, m.InFlight)
	return m
}

// Middleware instruments every request whose route is not in skipRoutes.
// The server passes its observability endpoints there so scrapes and health
// probes do not pollute the series. Routes are matched against the echo
// route pattern, so path parameters stay unexpanded (`/api/posts/:id`).
func (m *HTTPMetrics) Middleware(skipRoutes ...string) echo.MiddlewareFunc {
	skip := make(map[string]struct{}, len(skipRoutes))
	for _, route := range skipRoutes {
		skip[route] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			if _, ok := skip[route]; ok {
				return next(c)
			}

			m.InFlight.Inc()
			start := time.Now()

			err := next(c)

			m.InFlight.Dec()
			m.Requests.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(c.Response().Status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}
