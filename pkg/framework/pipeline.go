package framework

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/airsstack/airssys-osl/pkg/osl"
)

// Pipeline runs operations through the middleware chain and the executor
// registry. Before hooks run in priority order (highest first), After
// hooks in reverse, and every error passes through the owning
// middleware's OnError for a recovery decision.
type Pipeline struct {
	registry    *Registry
	middlewares []osl.Middleware
	logger      *slog.Logger
}

// NewPipeline builds a pipeline over the registry and middleware set.
// The middleware slice is copied and sorted by descending priority; ties
// keep their registration order.
func NewPipeline(registry *Registry, middlewares []osl.Middleware, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	sorted := slices.Clone(middlewares)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	return &Pipeline{registry: registry, middlewares: sorted, logger: logger}
}

// Middlewares returns the pipeline's middleware in execution order.
func (p *Pipeline) Middlewares() []osl.Middleware {
	return slices.Clone(p.middlewares)
}

// Execute runs op through the full pipeline: applicable Before hooks,
// the executor, error recovery, then After hooks in reverse. After hook
// failures are logged and swallowed.
func (p *Pipeline) Execute(ctx context.Context, op osl.Operation, ec *osl.ExecutionContext) (*osl.ExecutionResult, error) {
	applicable := p.applicable(op, ec)

	var applied []osl.Middleware
	current := op
	shortCircuit := false

	for _, mw := range applicable {
		applied = append(applied, mw)
		next, err := mw.Before(ctx, current, ec)
		if err != nil {
			next, err = p.resolveBefore(ctx, mw, current, ec, err)
			if err != nil {
				p.runAfter(ctx, applied, ec, nil, err)
				return nil, err
			}
			if next == current {
				// The failure was suppressed; the operation continues
				// unchanged, and the middleware stays in applied so
				// its After hook still runs.
				continue
			}
		}
		if next == nil {
			shortCircuit = true
			break
		}
		current = next
	}

	var res *osl.ExecutionResult
	var execErr error
	if shortCircuit {
		res = osl.EmptySuccess()
	} else {
		res, execErr = p.executeOperation(ctx, current, ec, applied)
	}

	p.runAfter(ctx, applied, ec, res, execErr)
	return res, execErr
}

// applicable filters the chain down to middleware that claims op's type
// and accepts it.
func (p *Pipeline) applicable(op osl.Operation, ec *osl.ExecutionContext) []osl.Middleware {
	out := make([]osl.Middleware, 0, len(p.middlewares))
	for _, mw := range p.middlewares {
		if !typeSupported(mw, op.Type()) {
			continue
		}
		if !mw.CanProcess(op, ec) {
			continue
		}
		out = append(out, mw)
	}
	return out
}

func typeSupported(mw osl.Middleware, t osl.OperationType) bool {
	types := mw.SupportedTypes()
	if len(types) == 0 {
		return true
	}
	return slices.Contains(types, t)
}

// resolveBefore applies mw's recovery decision to its own Before failure.
// It returns (current, nil) when the middleware is skipped, a transformed
// operation after a successful retry, or the error that fails the
// operation.
func (p *Pipeline) resolveBefore(ctx context.Context, mw osl.Middleware, current osl.Operation, ec *osl.ExecutionContext, beforeErr error) (osl.Operation, error) {
	action := mw.OnError(ctx, beforeErr, ec)

	if replacement, ok := action.Replacement(); ok {
		return nil, replacement
	}
	if maxAttempts, delay, ok := action.RetryPlan(); ok {
		var next osl.Operation
		err := retryWithBackoff(ctx, maxAttempts, delay, func() error {
			var retryErr error
			next, retryErr = mw.Before(ctx, current, ec)
			return retryErr
		})
		if err != nil {
			return nil, err
		}
		return next, nil
	}
	switch {
	case action.IsSuppress():
		return current, nil
	case action.IsLogAndContinue():
		p.logger.WarnContext(ctx, "middleware error suppressed",
			slog.String("middleware", mw.Name()),
			slog.Any("error", beforeErr))
		return current, nil
	default:
		// Stop and Continue both fail the operation here; Stop
		// additionally means no later recovery should run, which is
		// already the case for a Before failure.
		return nil, beforeErr
	}
}

// executeOperation dispatches to the registered executor and, on failure,
// walks the applied middleware for a recovery decision. The first
// non-continue action wins.
func (p *Pipeline) executeOperation(ctx context.Context, op osl.Operation, ec *osl.ExecutionContext, applied []osl.Middleware) (*osl.ExecutionResult, error) {
	exec, ok := p.registry.Executor(op.Type())
	if !ok {
		return nil, osl.ConfigurationError("no executor registered for operation type "+string(op.Type()), nil)
	}

	res, execErr := exec.Execute(ctx, op, ec)
	if execErr == nil {
		return res, nil
	}

	for _, mw := range applied {
		action := mw.OnError(ctx, execErr, ec)
		if action.IsContinue() {
			continue
		}
		if action.IsStop() {
			return nil, execErr
		}
		if replacement, ok := action.Replacement(); ok {
			return nil, replacement
		}
		if action.IsSuppress() {
			return osl.EmptySuccess(), nil
		}
		if action.IsLogAndContinue() {
			p.logger.WarnContext(ctx, "execution error noted",
				slog.String("middleware", mw.Name()),
				slog.Any("error", execErr))
			continue
		}
		if maxAttempts, delay, ok := action.RetryPlan(); ok {
			err := retryWithBackoff(ctx, maxAttempts, delay, func() error {
				var retryErr error
				res, retryErr = exec.Execute(ctx, op, ec)
				return retryErr
			})
			if err != nil {
				return nil, err
			}
			return res, nil
		}
	}
	return nil, execErr
}

// runAfter runs After hooks over the applied middleware in reverse
// order. Failures are logged and swallowed so observability trouble
// never changes an operation's outcome.
func (p *Pipeline) runAfter(ctx context.Context, applied []osl.Middleware, ec *osl.ExecutionContext, res *osl.ExecutionResult, execErr error) {
	for i := len(applied) - 1; i >= 0; i-- {
		mw := applied[i]
		if err := mw.After(ctx, ec, res, execErr); err != nil {
			p.logger.ErrorContext(ctx, "middleware after hook failed",
				slog.String("middleware", mw.Name()),
				slog.Any("error", err))
		}
	}
}

// retryWithBackoff re-runs fn up to maxAttempts times with exponential
// backoff seeded at delay. It returns nil on the first success, the
// context error on cancellation, and the last failure otherwise.
func retryWithBackoff(ctx context.Context, maxAttempts int, delay time.Duration, fn func() error) error {
	bo := backoff.NewExponentialBackOff()
	if delay > 0 {
		bo.InitialInterval = delay
	}
	bo.MaxElapsedTime = 0
	bo.Reset()

	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			break
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}
