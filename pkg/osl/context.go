package osl

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SecurityContext identifies the principal on whose behalf operations run.
// It is established once (per session, per request, or per framework
// instance) and attached to every ExecutionContext.
type SecurityContext struct {
	// Principal is the user or service executing operations.
	Principal string

	// SessionID ties audit records from one session together.
	SessionID string

	// EstablishedAt is when this context was created (UTC).
	EstablishedAt time.Time

	// Attributes carry additional security metadata (role, tenant, ...).
	Attributes map[string]string
}

// NewSecurityContext creates a security context for principal with a fresh
// session ID.
func NewSecurityContext(principal string) *SecurityContext {
	return &SecurityContext{
		Principal:     principal,
		SessionID:     uuid.NewString(),
		EstablishedAt: time.Now().UTC(),
		Attributes:    map[string]string{},
	}
}

// WithAttribute sets a security attribute and returns the context for
// chaining.
func (sc *SecurityContext) WithAttribute(key, value string) *SecurityContext {
	if sc.Attributes == nil {
		sc.Attributes = map[string]string{}
	}
	sc.Attributes[key] = value
	return sc
}

// Attribute returns the attribute value and whether it was set.
func (sc *SecurityContext) Attribute(key string) (string, bool) {
	v, ok := sc.Attributes[key]
	return v, ok
}

// IsAdmin reports whether the context carries the admin role attribute.
func (sc *SecurityContext) IsAdmin() bool {
	return sc.Attributes["role"] == "admin"
}

// IsServiceAccount reports whether the context represents a service
// account rather than a human user.
func (sc *SecurityContext) IsServiceAccount() bool {
	return sc.Attributes["type"] == "service"
}

// Age returns how long ago the context was established.
func (sc *SecurityContext) Age() time.Duration {
	return time.Since(sc.EstablishedAt)
}

// Expired reports whether the context is older than maxAge.
func (sc *SecurityContext) Expired(maxAge time.Duration) bool {
	return sc.Age() > maxAge
}

// ExecutionContext carries per-execution state through the pipeline: the
// security context, string metadata visible in audit records, and an
// untyped value bag middleware use to hand state between their hooks
// (trace spans, start times). One ExecutionContext serves exactly one
// operation execution.
type ExecutionContext struct {
	// ExecutionID uniquely identifies this execution.
	ExecutionID string

	// CreatedAt is when the execution started (UTC).
	CreatedAt time.Time

	// Security is the authorization context for this execution.
	Security *SecurityContext

	mu       sync.RWMutex
	metadata map[string]string
	values   map[string]any
}

// NewExecutionContext creates an execution context bound to sc.
func NewExecutionContext(sc *SecurityContext) *ExecutionContext {
	return &ExecutionContext{
		ExecutionID: uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Security:    sc,
		metadata:    map[string]string{},
		values:      map[string]any{},
	}
}

// Principal returns the principal from the security context, or "" when
// no security context is attached.
func (ec *ExecutionContext) Principal() string {
	if ec.Security == nil {
		return ""
	}
	return ec.Security.Principal
}

// SetMetadata records a string metadata entry. Metadata is included in
// audit records, so values must not contain secrets.
func (ec *ExecutionContext) SetMetadata(key, value string) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.metadata[key] = value
}

// Metadata returns the metadata value and whether it was set.
func (ec *ExecutionContext) Metadata(key string) (string, bool) {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	v, ok := ec.metadata[key]
	return v, ok
}

// MetadataSnapshot returns a copy of all metadata entries.
func (ec *ExecutionContext) MetadataSnapshot() map[string]string {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	out := make(map[string]string, len(ec.metadata))
	for k, v := range ec.metadata {
		out[k] = v
	}
	return out
}

// SetValue stores an untyped value for cross-hook middleware state.
// Unlike metadata, values never reach audit records.
func (ec *ExecutionContext) SetValue(key string, value any) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.values[key] = value
}

// Value returns the stored value and whether it was set.
func (ec *ExecutionContext) Value(key string) (any, bool) {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	v, ok := ec.values[key]
	return v, ok
}

// Age returns how long this execution has been running.
func (ec *ExecutionContext) Age() time.Duration {
	return time.Since(ec.CreatedAt)
}
