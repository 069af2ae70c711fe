// Package logger provides the activity logging middleware. It records an
// audit.ActivityLog for every operation that passes through the pipeline,
// successful or not, and forwards it to a pluggable audit.Logger.
package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/airsstack/airssys-osl/pkg/audit"
	"github.com/airsstack/airssys-osl/pkg/osl"
)

// DefaultPriority places activity logging ahead of security: After hooks
// run in reverse, so the logger observes the final outcome of every
// operation, security denials included.
const DefaultPriority = 110

const (
	opIDKey   = "logger.operation_id"
	opTypeKey = "logger.operation_type"
	startKey  = "logger.started_at"
)

// Middleware writes one activity record per operation execution.
type Middleware struct {
	osl.Base

	sink   audit.Logger
	logger *slog.Logger
}

var _ osl.Middleware = (*Middleware)(nil)

// Option configures the middleware.
type Option func(*Middleware)

// WithLogger sets the slog logger used when the sink fails.
func WithLogger(l *slog.Logger) Option {
	return func(mw *Middleware) { mw.logger = l }
}

// New builds the logging middleware writing to sink.
func New(sink audit.Logger, opts ...Option) *Middleware {
	mw := &Middleware{sink: sink, logger: slog.Default()}
	for _, o := range opts {
		o(mw)
	}
	return mw
}

func (mw *Middleware) Name() string { return "logger" }

func (mw *Middleware) Priority() int { return DefaultPriority }

// Before stashes operation identity in the execution context so After can
// build the record even when execution fails and no result exists.
func (mw *Middleware) Before(_ context.Context, op osl.Operation, ec *osl.ExecutionContext) (osl.Operation, error) {
	ec.SetValue(opIDKey, op.ID())
	ec.SetValue(opTypeKey, string(op.Type()))
	ec.SetValue(startKey, time.Now().UTC())
	return op, nil
}

// After builds and writes the activity record. Sink failures are logged
// and reported; the pipeline swallows them so audit trouble never fails
// the operation itself.
func (mw *Middleware) After(ctx context.Context, ec *osl.ExecutionContext, res *osl.ExecutionResult, execErr error) error {
	entry := mw.buildEntry(ec, res, execErr)
	if err := mw.sink.Log(ctx, entry); err != nil {
		mw.logger.ErrorContext(ctx, "activity log write failed",
			slog.String("operation_id", entry.OperationID),
			slog.Any("error", err))
		return err
	}
	return nil
}

func (mw *Middleware) buildEntry(ec *osl.ExecutionContext, res *osl.ExecutionResult, execErr error) audit.ActivityLog {
	entry := audit.ActivityLog{
		ExecutionID: ec.ExecutionID,
		Principal:   ec.Principal(),
		Timestamp:   time.Now().UTC(),
		Metadata:    ec.MetadataSnapshot(),
	}
	if ec.Security != nil {
		entry.SessionID = ec.Security.SessionID
	}
	if v, ok := ec.Value(opIDKey); ok {
		entry.OperationID, _ = v.(string)
	}
	if v, ok := ec.Value(opTypeKey); ok {
		entry.OperationType, _ = v.(string)
	}
	if v, ok := ec.Value(startKey); ok {
		if started, isTime := v.(time.Time); isTime {
			entry.DurationMS = time.Since(started).Milliseconds()
		}
	}
	if res != nil {
		entry.DurationMS = res.Duration.Milliseconds()
	}

	switch {
	case execErr == nil && (res == nil || res.IsSuccess()):
		entry.Status = audit.StatusSuccess
	case osl.IsSecurityViolation(execErr):
		entry.Status = audit.StatusDenied
		entry.SecurityRelevant = true
		entry.Error = execErr.Error()
	case execErr != nil:
		entry.Status = audit.StatusFailure
		entry.Error = execErr.Error()
	default:
		entry.Status = audit.StatusFailure
	}
	return entry
}

// SlogSink adapts a slog.Logger into an audit.Logger for deployments that
// want activity records in the application log stream instead of a store.
type SlogSink struct {
	logger *slog.Logger
}

var _ audit.Logger = (*SlogSink)(nil)

// NewSlogSink wraps l (slog.Default when nil).
func NewSlogSink(l *slog.Logger) *SlogSink {
	if l == nil {
		l = slog.Default()
	}
	return &SlogSink{logger: l}
}

func (s *SlogSink) Log(ctx context.Context, entry audit.ActivityLog) error {
	attrs := []any{
		slog.String("operation_id", entry.OperationID),
		slog.String("operation_type", entry.OperationType),
		slog.String("execution_id", entry.ExecutionID),
		slog.String("principal", entry.Principal),
		slog.String("status", string(entry.Status)),
		slog.Int64("duration_ms", entry.DurationMS),
	}
	if entry.Error != "" {
		attrs = append(attrs, slog.String("error", entry.Error))
	}
	if entry.SecurityRelevant {
		attrs = append(attrs, slog.Bool("security_relevant", true))
	}
	s.logger.InfoContext(ctx, "operation activity", attrs...)
	return nil
}

func (s *SlogSink) Close() error { return nil }
