// Package events publishes operation lifecycle notifications to in-process
// subscribers. Delivery is best-effort: slow subscribers drop events
// rather than stall the pipeline.
package events

import (
	"time"

	"github.com/airsstack/airssys-osl/pkg/osl"
)

// Type identifies a lifecycle stage.
type Type string

const (
	// TypeStarted fires when an operation enters the pipeline.
	TypeStarted Type = "operation.started"
	// TypeCompleted fires on successful execution.
	TypeCompleted Type = "operation.completed"
	// TypeFailed fires when execution or a middleware stage fails.
	TypeFailed Type = "operation.failed"
	// TypeDenied fires when security policy refuses the operation.
	TypeDenied Type = "operation.denied"
)

// Event is one lifecycle notification.
type Event struct {
	Type Type `json:"type"`

	// OperationID identifies the operation.
	OperationID string `json:"operation_id"`

	// OperationType is the operation category.
	OperationType osl.OperationType `json:"operation_type"`

	// ExecutionID ties the event to one pipeline pass.
	ExecutionID string `json:"execution_id"`

	// Principal is who ran the operation.
	Principal string `json:"principal,omitempty"`

	// Error carries the failure message for failed and denied events.
	Error string `json:"error,omitempty"`

	// ExitCode is set on completed events.
	ExitCode int `json:"exit_code,omitempty"`

	// Timestamp is when the event was published (UTC).
	Timestamp time.Time `json:"timestamp"`
}
