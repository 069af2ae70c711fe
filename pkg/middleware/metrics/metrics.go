// Package metrics provides a Prometheus instrumentation middleware:
// operation counts by type and status, plus an execution duration
// histogram.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/airsstack/airssys-osl/pkg/osl"
)

// DefaultPriority runs metrics close to execution so measured durations
// exclude the outer middleware stages. At this priority only operations
// that pass security enforcement are observed; order the middleware
// ahead of security (see WithPriority) to also count denials.
const DefaultPriority = 20

const startKey = "metrics.started_at"

// Middleware records Prometheus metrics for every operation it sees.
type Middleware struct {
	osl.Base

	priority   int
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

var _ osl.Middleware = (*Middleware)(nil)

// Option configures the middleware.
type Option func(*Middleware)

// WithPriority overrides DefaultPriority. A priority above the security
// middleware's makes denied operations visible to the counters, at the
// cost of measured durations including the stages in between.
func WithPriority(p int) Option {
	return func(mw *Middleware) { mw.priority = p }
}

// New builds the middleware, registering its collectors with reg
// (prometheus.DefaultRegisterer when nil).
func New(reg prometheus.Registerer, opts ...Option) *Middleware {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	mw := &Middleware{
		priority: DefaultPriority,
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osl",
			Name:      "operations_total",
			Help:      "Operations executed, by type and outcome.",
		}, []string{"type", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "osl",
			Name:      "operation_duration_seconds",
			Help:      "Operation execution duration.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"type"}),
	}
	for _, o := range opts {
		o(mw)
	}
	return mw
}

func (mw *Middleware) Name() string { return "metrics" }

func (mw *Middleware) Priority() int { return mw.priority }

func (mw *Middleware) Before(_ context.Context, op osl.Operation, ec *osl.ExecutionContext) (osl.Operation, error) {
	ec.SetValue(startKey, time.Now())
	ec.SetValue("metrics.operation_type", string(op.Type()))
	return op, nil
}

func (mw *Middleware) After(_ context.Context, ec *osl.ExecutionContext, res *osl.ExecutionResult, execErr error) error {
	opType := "unknown"
	if v, ok := ec.Value("metrics.operation_type"); ok {
		if s, isString := v.(string); isString {
			opType = s
		}
	}

	status := "success"
	switch {
	case osl.IsSecurityViolation(execErr):
		status = "denied"
	case execErr != nil:
		status = "failure"
	case res != nil && !res.IsSuccess():
		status = "failure"
	}
	mw.operations.WithLabelValues(opType, status).Inc()

	if v, ok := ec.Value(startKey); ok {
		if started, isTime := v.(time.Time); isTime {
			mw.duration.WithLabelValues(opType).Observe(time.Since(started).Seconds())
		}
	}
	return nil
}
