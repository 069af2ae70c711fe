// Package ratelimit provides a token-bucket rate limiting middleware with
// independent limits per operation type.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/airsstack/airssys-osl/pkg/osl"
)

// DefaultPriority runs rate limiting after security and logging but ahead
// of observability middleware.
const DefaultPriority = 80

// Mode selects behavior when a bucket is empty.
type Mode string

const (
	// ModeBlock rejects the operation immediately.
	ModeBlock Mode = "block"
	// ModeWait blocks until a token is available or the context ends.
	ModeWait Mode = "wait"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m == ModeBlock || m == ModeWait }

// Limit configures one operation type's bucket.
type Limit struct {
	// PerSecond is the sustained rate.
	PerSecond float64
	// Burst is the bucket depth. Zero defaults to max(1, PerSecond).
	Burst int
}

// Middleware applies per-type token buckets. Types without a configured
// limit pass through unlimited.
type Middleware struct {
	osl.Base

	mode Mode

	mu       sync.Mutex
	limiters map[osl.OperationType]*rate.Limiter
}

var _ osl.Middleware = (*Middleware)(nil)

// New builds the middleware from per-type limits.
func New(limits map[osl.OperationType]Limit, mode Mode) *Middleware {
	if !mode.Valid() {
		mode = ModeBlock
	}
	mw := &Middleware{
		mode:     mode,
		limiters: make(map[osl.OperationType]*rate.Limiter, len(limits)),
	}
	for t, l := range limits {
		burst := l.Burst
		if burst <= 0 {
			burst = int(l.PerSecond)
			if burst < 1 {
				burst = 1
			}
		}
		mw.limiters[t] = rate.NewLimiter(rate.Limit(l.PerSecond), burst)
	}
	return mw
}

func (mw *Middleware) Name() string { return "ratelimit" }

func (mw *Middleware) Priority() int { return DefaultPriority }

// SupportedTypes claims only the configured types so the builder does not
// demand executors for types this middleware never sees.
func (mw *Middleware) SupportedTypes() []osl.OperationType {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	types := make([]osl.OperationType, 0, len(mw.limiters))
	for t := range mw.limiters {
		types = append(types, t)
	}
	return types
}

// CanProcess skips operations with no configured limit.
func (mw *Middleware) CanProcess(op osl.Operation, _ *osl.ExecutionContext) bool {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	_, ok := mw.limiters[op.Type()]
	return ok
}

func (mw *Middleware) Before(ctx context.Context, op osl.Operation, ec *osl.ExecutionContext) (osl.Operation, error) {
	mw.mu.Lock()
	lim := mw.limiters[op.Type()]
	mw.mu.Unlock()
	if lim == nil {
		return op, nil
	}

	if mw.mode == ModeWait {
		if err := lim.Wait(ctx); err != nil {
			return nil, osl.MiddlewareFailed(mw.Name(), "rate limit wait canceled", err)
		}
		return op, nil
	}
	if !lim.Allow() {
		return nil, osl.MiddlewareFailed(mw.Name(),
			fmt.Sprintf("rate limit exceeded for %s operations", op.Type()), nil)
	}
	return op, nil
}
