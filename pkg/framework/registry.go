// Package framework wires operations, middleware, and executors together:
// the executor registry, the middleware pipeline, the builder, and the
// execution facade.
package framework

import (
	"fmt"
	"sort"

	"github.com/airsstack/airssys-osl/pkg/osl"
)

// Registry maps operation types to the executor responsible for them.
// Each type has exactly one executor; registering a second one is an
// error rather than a silent override.
type Registry struct {
	executors map[osl.OperationType]osl.Executor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{executors: make(map[osl.OperationType]osl.Executor)}
}

// Register claims every type the executor supports. It fails on nil
// executors, executors without supported types, unknown types, and types
// already claimed by another executor.
func (r *Registry) Register(e osl.Executor) error {
	if e == nil {
		return osl.ConfigurationError("nil executor", nil)
	}
	types := e.SupportedTypes()
	if len(types) == 0 {
		return osl.ConfigurationError(fmt.Sprintf("executor %q supports no operation types", e.Name()), nil)
	}
	for _, t := range types {
		if !t.Valid() {
			return osl.ConfigurationError(fmt.Sprintf("executor %q claims unknown operation type %q", e.Name(), t), nil)
		}
		if existing, ok := r.executors[t]; ok {
			return osl.ConfigurationError(fmt.Sprintf("operation type %q already handled by executor %q", t, existing.Name()), nil)
		}
	}
	for _, t := range types {
		r.executors[t] = e
	}
	return nil
}

// Executor returns the executor for t.
func (r *Registry) Executor(t osl.OperationType) (osl.Executor, bool) {
	e, ok := r.executors[t]
	return e, ok
}

// Types returns the registered operation types, sorted for stable output.
func (r *Registry) Types() []osl.OperationType {
	types := make([]osl.OperationType, 0, len(r.executors))
	for t := range r.executors {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Validate checks that every operation type claimed by a middleware has a
// registered executor. A middleware claiming a type nothing can execute
// is a configuration mistake surfaced at build time, not at runtime.
func (r *Registry) Validate(middlewares []osl.Middleware) error {
	for _, mw := range middlewares {
		for _, t := range mw.SupportedTypes() {
			if !t.Valid() {
				return osl.ConfigurationError(
					fmt.Sprintf("middleware %q claims unknown operation type %q", mw.Name(), t), nil)
			}
			if _, ok := r.executors[t]; !ok {
				return osl.ConfigurationError(
					fmt.Sprintf("middleware %q claims operation type %q but no executor handles it", mw.Name(), t), nil)
			}
		}
	}
	return nil
}
