package framework

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/airsstack/airssys-osl/pkg/events"
	"github.com/airsstack/airssys-osl/pkg/osl"
)

// Framework is the execution facade. It owns the pipeline, the executor
// registry, the event broker, and the default security context applied
// to operations executed without an explicit one.
type Framework struct {
	pipeline *Pipeline
	registry *Registry
	broker   *events.Broker
	logger   *slog.Logger
	security *osl.SecurityContext
	closers  []func() error
}

// Execute runs op as the framework's default principal.
func (f *Framework) Execute(ctx context.Context, op osl.Operation) (*osl.ExecutionResult, error) {
	return f.ExecuteAs(ctx, op, f.security)
}

// ExecuteAs runs op under an explicit security context, overriding the
// default principal for this execution only.
func (f *Framework) ExecuteAs(ctx context.Context, op osl.Operation, sc *osl.SecurityContext) (*osl.ExecutionResult, error) {
	if op == nil {
		return nil, osl.ConfigurationError("nil operation", nil)
	}
	if !op.Type().Valid() {
		return nil, osl.ConfigurationError("unknown operation type "+string(op.Type()), nil)
	}

	ec := osl.NewExecutionContext(sc)
	f.publish(events.Event{
		Type:          events.TypeStarted,
		OperationID:   op.ID(),
		OperationType: op.Type(),
		ExecutionID:   ec.ExecutionID,
		Principal:     ec.Principal(),
	})

	res, err := f.pipeline.Execute(ctx, op, ec)

	switch {
	case err == nil:
		ev := events.Event{
			Type:          events.TypeCompleted,
			OperationID:   op.ID(),
			OperationType: op.Type(),
			ExecutionID:   ec.ExecutionID,
			Principal:     ec.Principal(),
		}
		if res != nil {
			ev.ExitCode = res.ExitCode
		}
		f.publish(ev)
	case osl.IsSecurityViolation(err):
		f.publish(events.Event{
			Type:          events.TypeDenied,
			OperationID:   op.ID(),
			OperationType: op.Type(),
			ExecutionID:   ec.ExecutionID,
			Principal:     ec.Principal(),
			Error:         err.Error(),
		})
	default:
		f.publish(events.Event{
			Type:          events.TypeFailed,
			OperationID:   op.ID(),
			OperationType: op.Type(),
			ExecutionID:   ec.ExecutionID,
			Principal:     ec.Principal(),
			Error:         err.Error(),
		})
	}
	return res, err
}

func (f *Framework) publish(ev events.Event) {
	ev.Timestamp = time.Now().UTC()
	f.broker.Publish(ev)
}

// Events returns the broker for subscribing to lifecycle events.
func (f *Framework) Events() *events.Broker { return f.broker }

// Registry exposes the executor registry, mainly for introspection.
func (f *Framework) Registry() *Registry { return f.registry }

// Principal returns the default principal operations run as.
func (f *Framework) Principal() string {
	if f.security == nil {
		return ""
	}
	return f.security.Principal
}

// Close releases resources owned by the framework, such as audit stores
// registered through the builder.
func (f *Framework) Close() error {
	var errs []error
	for _, c := range f.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
