package middleware

import (
	"strconv"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"server", "method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shop_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"server", "method", "path", "status"},
	)
)

// PrometheusMiddleware records count and latency per route template.
func PrometheusMiddleware(server string) iris.Handler {
	return func(ctx iris.Context) {
		start := time.Now()
		path := ctx.Path()
		if r := ctx.GetCurrentRoute(); r != nil {
			path = r.Path()
		}

		ctx.Next()

		status := strconv.Itoa(ctx.GetStatusCode())
		method := ctx.Method()
		httpRequestsTotal.WithLabelValues(server, method, path, status).Inc()
		httpRequestDuration.WithLabelValues(server, method, path, status).Observe(time.Since(start).Seconds())
	}
}
