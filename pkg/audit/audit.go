// Package audit defines the activity record produced for every operation
// the framework executes, the logger interface the logging middleware
// writes through, and the query shape the sqlite store answers.
package audit

import (
	"context"
	"time"
)

// Status classifies the outcome of an operation in an activity record.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusDenied  Status = "denied"
)

// ActivityLog is one structured audit record for one operation execution.
type ActivityLog struct {
	// ID uniquely identifies the record.
	ID string `json:"id"`

	// OperationID is the ID of the executed operation.
	OperationID string `json:"operation_id"`

	// OperationType is the operation category.
	OperationType string `json:"operation_type"`

	// ExecutionID ties the record to its execution context.
	ExecutionID string `json:"execution_id,omitempty"`

	// Principal is who ran the operation.
	Principal string `json:"principal,omitempty"`

	// SessionID groups records from one session.
	SessionID string `json:"session_id,omitempty"`

	// Status is the outcome classification.
	Status Status `json:"status"`

	// Error holds the failure message for non-success records.
	Error string `json:"error,omitempty"`

	// DurationMS is the execution time in milliseconds.
	DurationMS int64 `json:"duration_ms"`

	// Timestamp is when the record was created (UTC).
	Timestamp time.Time `json:"timestamp"`

	// SecurityRelevant marks records produced by security decisions.
	SecurityRelevant bool `json:"security_relevant,omitempty"`

	// Metadata carries operation-specific detail (path, pid, address).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Logger is a pluggable destination for activity records. Implementations
// must be safe for concurrent use.
type Logger interface {
	// Log writes one activity record.
	Log(ctx context.Context, entry ActivityLog) error

	// Close flushes and releases the destination.
	Close() error
}

// Query filters activity records. Zero fields are ignored.
type Query struct {
	Principal     string
	SessionID     string
	OperationType string
	Status        Status
	Since         *time.Time
	Until         *time.Time
	// SecurityOnly restricts results to security-relevant records.
	SecurityOnly bool
	Limit        int
	Offset       int
	// Asc orders oldest-first instead of the default newest-first.
	Asc bool
}

// Querier is implemented by stores that support reading records back.
type Querier interface {
	Query(ctx context.Context, q Query) ([]ActivityLog, error)
}
