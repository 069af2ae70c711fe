package osl

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// ExecutionResult is the outcome of a successfully dispatched operation.
// Executor-level failures are returned as errors, not results; a result
// with a non-zero exit code represents work that ran but reported failure
// (a spawned process exiting 1, for example).
type ExecutionResult struct {
	// Output is the raw output produced by the operation.
	Output []byte

	// ExitCode is the status code of the operation (0 = success).
	ExitCode int

	// StartedAt and CompletedAt bound the execution (UTC).
	StartedAt   time.Time
	CompletedAt time.Time

	// Duration is CompletedAt - StartedAt.
	Duration time.Duration

	// Metadata carries executor-specific details (path, pid, remote addr).
	Metadata map[string]string
}

// NewResult creates a result with timing derived from startedAt.
func NewResult(output []byte, exitCode int, startedAt, completedAt time.Time) *ExecutionResult {
	d := completedAt.Sub(startedAt)
	if d < 0 {
		d = 0
	}
	return &ExecutionResult{
		Output:      output,
		ExitCode:    exitCode,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		Duration:    d,
		Metadata:    map[string]string{},
	}
}

// Success creates a zero-exit result with the given output and timing.
func Success(output []byte, startedAt, completedAt time.Time) *ExecutionResult {
	return NewResult(output, 0, startedAt, completedAt)
}

// EmptySuccess creates a zero-exit result with no output. The pipeline
// uses it when a middleware short-circuits execution.
func EmptySuccess() *ExecutionResult {
	now := time.Now().UTC()
	return NewResult(nil, 0, now, now)
}

// Failure creates a non-zero-exit result carrying error output.
func Failure(output []byte, exitCode int, startedAt, completedAt time.Time) *ExecutionResult {
	return NewResult(output, exitCode, startedAt, completedAt)
}

// WithMetadata sets a metadata entry and returns the result for chaining.
func (r *ExecutionResult) WithMetadata(key, value string) *ExecutionResult {
	if r.Metadata == nil {
		r.Metadata = map[string]string{}
	}
	r.Metadata[key] = value
	return r
}

// GetMetadata returns the metadata value and whether it was set.
func (r *ExecutionResult) GetMetadata(key string) (string, bool) {
	v, ok := r.Metadata[key]
	return v, ok
}

// IsSuccess reports whether the operation exited zero.
func (r *ExecutionResult) IsSuccess() bool { return r.ExitCode == 0 }

// OutputString returns the output as a string. It returns an error when
// the output is not valid UTF-8.
func (r *ExecutionResult) OutputString() (string, error) {
	if !utf8.Valid(r.Output) {
		return "", fmt.Errorf("output is not valid UTF-8 (%d bytes)", len(r.Output))
	}
	return string(r.Output), nil
}

// ExceededDuration reports whether the execution took longer than max.
func (r *ExecutionResult) ExceededDuration(max time.Duration) bool {
	return r.Duration > max
}

// Summary returns a one-line description for logs.
func (r *ExecutionResult) Summary() string {
	return fmt.Sprintf("exit=%d duration=%s output_bytes=%d", r.ExitCode, r.Duration, len(r.Output))
}
