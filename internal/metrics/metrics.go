// Package metrics exposes Prometheus collectors for domain dispatch.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zjrosen/strata/internal/domain"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds the dispatch collectors.
type Metrics struct {
	// Dispatches by kind, message type name and outcome.
	Dispatches *prometheus.CounterVec

	// Execution latency by kind.
	Duration *prometheus.HistogramVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests
// so repeated construction does not collide on the default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "strata_dispatch_total",
			Help: "Commands and queries dispatched through a domain",
		}, []string{"kind", "name", "outcome"}),

		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "strata_dispatch_duration_seconds",
			Help:    "Time spent executing commands and queries",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"kind"}),
	}
}

// ObserveDispatch records one finished dispatch.
func (m *Metrics) ObserveDispatch(kind domain.Kind, name string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.Dispatches.WithLabelValues(string(kind), name, outcome).Inc()
	m.Duration.WithLabelValues(string(kind)).Observe(d.Seconds())
}

// NewMiddleware records every dispatch on m. A nil m passes through.
func NewMiddleware(m *Metrics) domain.Middleware {
	return func(next domain.Handler) domain.Handler {
		if m == nil {
			return next
		}
		return domain.HandlerFunc(func(ctx context.Context, dispatch domain.Dispatch) error {
			start := time.Now()
			err := next.Handle(ctx, dispatch)
			m.ObserveDispatch(dispatch.Kind, dispatch.Name, err, time.Since(start))
			return err
		})
	}
}
