// Package tracing provides an OpenTelemetry middleware that wraps each
// operation execution in a span carrying operation identity, principal,
// and outcome.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/airsstack/airssys-osl/pkg/osl"
)

// DefaultPriority runs tracing just outside metrics so spans cover the
// measured execution.
const DefaultPriority = 30

const spanKey = "tracing.span"

const scopeName = "github.com/airsstack/airssys-osl/pkg/middleware/tracing"

// Middleware opens a span per operation in Before and closes it in After.
type Middleware struct {
	osl.Base

	tracer trace.Tracer
}

var _ osl.Middleware = (*Middleware)(nil)

// New builds the middleware using tp, or the global tracer provider when
// tp is nil.
func New(tp trace.TracerProvider) *Middleware {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Middleware{tracer: tp.Tracer(scopeName)}
}

func (mw *Middleware) Name() string { return "tracing" }

func (mw *Middleware) Priority() int { return DefaultPriority }

func (mw *Middleware) Before(ctx context.Context, op osl.Operation, ec *osl.ExecutionContext) (osl.Operation, error) {
	_, span := mw.tracer.Start(ctx, "osl.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("osl.operation.id", op.ID()),
			attribute.String("osl.operation.type", string(op.Type())),
			attribute.String("osl.execution.id", ec.ExecutionID),
			attribute.String("osl.principal", ec.Principal()),
		),
	)
	ec.SetValue(spanKey, span)
	return op, nil
}

func (mw *Middleware) After(_ context.Context, ec *osl.ExecutionContext, res *osl.ExecutionResult, execErr error) error {
	v, ok := ec.Value(spanKey)
	if !ok {
		return nil
	}
	span, ok := v.(trace.Span)
	if !ok {
		return nil
	}
	defer span.End()

	switch {
	case execErr != nil:
		span.RecordError(execErr)
		span.SetStatus(codes.Error, execErr.Error())
		if osl.IsSecurityViolation(execErr) {
			span.SetAttributes(attribute.Bool("osl.denied", true))
		}
	case res != nil:
		span.SetAttributes(attribute.Int("osl.exit_code", res.ExitCode))
		if res.IsSuccess() {
			span.SetStatus(codes.Ok, "")
		} else {
			span.SetStatus(codes.Error, "non-zero exit")
		}
	default:
		span.SetStatus(codes.Ok, "")
	}
	return nil
}
