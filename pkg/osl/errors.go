package osl

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies framework errors for logging, metrics, and
// retry decisions.
type ErrorCategory string

const (
	CategorySecurity      ErrorCategory = "security"
	CategoryMiddleware    ErrorCategory = "middleware"
	CategoryExecution     ErrorCategory = "execution"
	CategoryFilesystem    ErrorCategory = "filesystem"
	CategoryProcess       ErrorCategory = "process"
	CategoryNetwork       ErrorCategory = "network"
	CategoryConfiguration ErrorCategory = "configuration"
)

// Error is the structured error type for all framework failures. The
// Category drives error handling policy (security violations stop the
// pipeline, network failures are retryable); the remaining fields add
// context for audit records and log lines.
type Error struct {
	Category ErrorCategory

	// Op is the failing operation verb ("read", "spawn", "connect").
	Op string

	// Path is the resource involved, when there is one.
	Path string

	// Middleware names the middleware stage for middleware failures.
	Middleware string

	// Reason is a human-readable description of the failure.
	Reason string

	// Err is the wrapped cause, if any.
	Err error
}

func (e *Error) Error() string {
	switch e.Category {
	case CategorySecurity:
		return fmt.Sprintf("security policy violation: %s", e.Reason)
	case CategoryMiddleware:
		return fmt.Sprintf("middleware %q failed: %s", e.Middleware, e.Reason)
	case CategoryFilesystem:
		return fmt.Sprintf("filesystem %s %q: %s", e.Op, e.Path, e.Reason)
	case CategoryProcess:
		return fmt.Sprintf("process %s: %s", e.Op, e.Reason)
	case CategoryNetwork:
		return fmt.Sprintf("network %s: %s", e.Op, e.Reason)
	case CategoryConfiguration:
		return fmt.Sprintf("configuration error: %s", e.Reason)
	default:
		return fmt.Sprintf("operation execution failed: %s", e.Reason)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the error is worth retrying automatically.
// Only transient categories qualify.
func (e *Error) Retryable() bool {
	return e.Category == CategoryNetwork || e.Category == CategoryExecution
}

// SecurityViolation creates a security policy violation error.
func SecurityViolation(reason string) *Error {
	return &Error{Category: CategorySecurity, Reason: reason}
}

// MiddlewareFailed creates an error for a failed middleware stage.
func MiddlewareFailed(middleware, reason string, cause error) *Error {
	return &Error{Category: CategoryMiddleware, Middleware: middleware, Reason: reason, Err: cause}
}

// ExecutionFailed creates a generic execution error.
func ExecutionFailed(reason string, cause error) *Error {
	return &Error{Category: CategoryExecution, Reason: reason, Err: cause}
}

// FilesystemError creates a filesystem operation error.
func FilesystemError(op, path string, cause error) *Error {
	return &Error{Category: CategoryFilesystem, Op: op, Path: path, Reason: causeReason(cause), Err: cause}
}

// ProcessError creates a process operation error.
func ProcessError(op string, cause error) *Error {
	return &Error{Category: CategoryProcess, Op: op, Reason: causeReason(cause), Err: cause}
}

// NetworkError creates a network operation error.
func NetworkError(op string, cause error) *Error {
	return &Error{Category: CategoryNetwork, Op: op, Reason: causeReason(cause), Err: cause}
}

// ConfigurationError creates a configuration error.
func ConfigurationError(reason string, cause error) *Error {
	return &Error{Category: CategoryConfiguration, Reason: reason, Err: cause}
}

func causeReason(cause error) string {
	if cause == nil {
		return "unknown"
	}
	return cause.Error()
}

// CategoryOf returns the category of err, or "" when err is not a
// framework error.
func CategoryOf(err error) ErrorCategory {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return ""
}

// IsSecurityViolation reports whether err is a security policy violation.
func IsSecurityViolation(err error) bool {
	return CategoryOf(err) == CategorySecurity
}

// IsRetryable reports whether err is a framework error in a retryable
// category.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable()
}
