package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"wayfire-ipc/message"
)

// Call outcomes used as the "status" label.
const (
	StatusOK          = "ok"
	StatusRemoteError = "remote_error"
	StatusError       = "error"
)

// Metrics holds the per-method call collectors.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the call collectors on reg under the "wayfire_ipc"
// namespace. Registering twice on the same registry panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wayfire_ipc",
			Name:      "calls_total",
			Help:      "Compositor calls by method and outcome",
		}, []string{"method", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wayfire_ipc",
			Name:      "call_duration_seconds",
			Help:      "Time from writing a request to reading its answer",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, 1},
		}, []string{"method"}),
	}
}

// Calls returns the counter for method and status.
func (m *Metrics) Calls(method, status string) prometheus.Counter {
	return m.calls.WithLabelValues(method, status)
}

// Middleware records every call passing through it.
func (m *Metrics) Middleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *message.Request) (message.Document, error) {
			start := time.Now()
			doc, err := next(ctx, req)
			m.duration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())

			status := StatusOK
			switch {
			case err != nil:
				status = StatusError
			case doc.IsError():
				status = StatusRemoteError
			}
			m.calls.WithLabelValues(req.Method, status).Inc()
			return doc, err
		}
	}
}
