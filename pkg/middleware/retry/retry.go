// Package retry provides a middleware that retries transient execution
// failures. It takes no part in the success path; its OnError hook asks
// the pipeline to re-run the executor for retryable error categories.
package retry

import (
	"context"
	"time"

	"github.com/airsstack/airssys-osl/pkg/osl"
)

// DefaultPriority runs retry innermost so every other middleware's
// recovery decision is consulted first.
const DefaultPriority = 10

// DefaultDelay seeds the backoff when no delay is configured.
const DefaultDelay = 100 * time.Millisecond

// Middleware turns retryable execution failures into retry requests.
type Middleware struct {
	osl.Base

	maxAttempts int
	delay       time.Duration
}

var _ osl.Middleware = (*Middleware)(nil)

// New builds the middleware. maxAttempts bounds the re-runs after the
// initial failure; delay seeds the exponential backoff between them.
func New(maxAttempts int, delay time.Duration) *Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Middleware{maxAttempts: maxAttempts, delay: delay}
}

func (mw *Middleware) Name() string { return "retry" }

func (mw *Middleware) Priority() int { return DefaultPriority }

// OnError requests a retry for transient failures and defers to the
// rest of the chain for everything else.
func (mw *Middleware) OnError(_ context.Context, err error, _ *osl.ExecutionContext) osl.ErrorAction {
	if osl.IsRetryable(err) {
		return osl.Retry(mw.maxAttempts, mw.delay)
	}
	return osl.Continue()
}
