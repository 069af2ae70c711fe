package osl

import (
	"context"
	"time"
)

// Middleware is a pipeline stage applied to every operation the framework
// executes. Hooks run in priority order before execution and in reverse
// order afterwards; see pkg/framework for the orchestration contract.
//
// Implementations should embed Base to pick up no-op defaults and only
// override the hooks they need.
type Middleware interface {
	// Name identifies the middleware in logs, errors, and audit records.
	Name() string

	// Priority orders the pipeline: higher runs earlier in Before and
	// later in After. Security middleware uses 100 to run first.
	Priority() int

	// SupportedTypes declares the operation types this middleware
	// handles. An empty slice means all types. The framework builder
	// rejects a configuration in which a claimed type has no executor.
	SupportedTypes() []OperationType

	// CanProcess gates the middleware per operation. Middleware whose
	// CanProcess returns false is skipped entirely for that operation.
	CanProcess(op Operation, ec *ExecutionContext) bool

	// Before runs ahead of execution. It may return a transformed
	// operation to continue with, or a nil operation to short-circuit
	// the pipeline (the middleware handled the operation itself; the
	// caller receives an empty success). A returned error is resolved
	// through OnError.
	Before(ctx context.Context, op Operation, ec *ExecutionContext) (Operation, error)

	// After runs once execution has finished, successfully or not.
	// res is nil when execution failed; execErr is nil when it
	// succeeded. After failures are logged and swallowed by the
	// pipeline, never surfaced to the caller.
	After(ctx context.Context, ec *ExecutionContext, res *ExecutionResult, execErr error) error

	// OnError decides how the pipeline treats an error raised by this
	// middleware's Before hook or by operation execution.
	OnError(ctx context.Context, opErr error, ec *ExecutionContext) ErrorAction
}

// Base provides no-op defaults for every optional Middleware hook.
// Embed it and override selectively.
type Base struct{}

// SupportedTypes applies the middleware to all operation types.
func (Base) SupportedTypes() []OperationType { return nil }

// CanProcess accepts every operation.
func (Base) CanProcess(Operation, *ExecutionContext) bool { return true }

// Before passes the operation through unchanged.
func (Base) Before(_ context.Context, op Operation, _ *ExecutionContext) (Operation, error) {
	return op, nil
}

// After does nothing.
func (Base) After(context.Context, *ExecutionContext, *ExecutionResult, error) error {
	return nil
}

// OnError keeps the original error.
func (Base) OnError(context.Context, error, *ExecutionContext) ErrorAction {
	return Continue()
}

// actionKind enumerates the recovery behaviors a middleware may request.
type actionKind int

const (
	actionContinue actionKind = iota
	actionStop
	actionReplace
	actionSuppress
	actionLogAndContinue
	actionRetry
)

// ErrorAction tells the pipeline how to recover from an error. Construct
// values with Continue, Stop, Replace, Suppress, LogAndContinue, or Retry.
type ErrorAction struct {
	kind        actionKind
	replacement error
	maxAttempts int
	delay       time.Duration
}

// Continue propagates the original error unchanged.
func Continue() ErrorAction { return ErrorAction{kind: actionContinue} }

// Stop aborts the pipeline immediately with the original error. No
// further middleware is consulted.
func Stop() ErrorAction { return ErrorAction{kind: actionStop} }

// Replace substitutes err for the original error.
func Replace(err error) ErrorAction {
	return ErrorAction{kind: actionReplace, replacement: err}
}

// Suppress discards the error. For Before failures the failing middleware
// is skipped and the pipeline continues; for execution failures the
// caller receives an empty success.
func Suppress() ErrorAction { return ErrorAction{kind: actionSuppress} }

// LogAndContinue logs the error and then behaves like Suppress for Before
// failures and like Continue for execution failures.
func LogAndContinue() ErrorAction { return ErrorAction{kind: actionLogAndContinue} }

// Retry re-attempts the failed stage up to maxAttempts times, backing off
// exponentially from delay.
func Retry(maxAttempts int, delay time.Duration) ErrorAction {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return ErrorAction{kind: actionRetry, maxAttempts: maxAttempts, delay: delay}
}

// IsStop reports whether the action aborts the pipeline.
func (a ErrorAction) IsStop() bool { return a.kind == actionStop }

// IsContinue reports whether the action keeps the original error.
func (a ErrorAction) IsContinue() bool { return a.kind == actionContinue }

// IsSuppress reports whether the action discards the error.
func (a ErrorAction) IsSuppress() bool { return a.kind == actionSuppress }

// IsLogAndContinue reports whether the action logs then continues.
func (a ErrorAction) IsLogAndContinue() bool { return a.kind == actionLogAndContinue }

// Replacement returns the substitute error and whether the action is a
// replacement.
func (a ErrorAction) Replacement() (error, bool) {
	return a.replacement, a.kind == actionReplace
}

// RetryPlan returns the retry bounds and whether the action is a retry.
func (a ErrorAction) RetryPlan() (maxAttempts int, delay time.Duration, ok bool) {
	return a.maxAttempts, a.delay, a.kind == actionRetry
}
