package osl

import "context"

// Executor performs operations against the host system. Each executor
// serves one or more operation categories and is registered with the
// framework's registry, which dispatches by Operation.Type.
//
// Executors must be safe for concurrent use: the framework runs batch
// operations in parallel.
type Executor interface {
	// Name identifies the executor in logs and result metadata.
	Name() string

	// SupportedTypes returns the operation categories this executor
	// serves. Must be non-empty.
	SupportedTypes() []OperationType

	// Execute performs the operation. Implementations honor ctx for
	// cancellation and deadlines, and return framework errors
	// (FilesystemError, ProcessError, NetworkError) on failure.
	Execute(ctx context.Context, op Operation, ec *ExecutionContext) (*ExecutionResult, error)
}

// Supports reports whether the executor serves the given operation type.
func Supports(e Executor, t OperationType) bool {
	for _, st := range e.SupportedTypes() {
		if st == t {
			return true
		}
	}
	return false
}
