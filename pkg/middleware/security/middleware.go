package security

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/airsstack/airssys-osl/pkg/osl"
)

// Mode selects how policy verdicts are applied.
type Mode string

const (
	// ModeEnforce blocks denied operations.
	ModeEnforce Mode = "enforce"
	// ModeLogOnly records verdicts but never blocks.
	ModeLogOnly Mode = "log_only"
	// ModeDisabled skips policy evaluation entirely.
	ModeDisabled Mode = "disabled"
)

// Valid reports whether m is a known enforcement mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeEnforce, ModeLogOnly, ModeDisabled:
		return true
	}
	return false
}

// DefaultPriority places security ahead of rate limiting, observability,
// and execution, so denied operations reach none of them. Only the
// activity logger runs earlier, to record denials in its After hook.
const DefaultPriority = 100

// Middleware enforces policies over every operation's required
// permissions. The default posture is deny: a permission no policy
// allows is refused even when no policy denies it.
type Middleware struct {
	osl.Base

	mode     Mode
	policies []Policy
	logger   *slog.Logger
}

var _ osl.Middleware = (*Middleware)(nil)

// Option configures the middleware.
type Option func(*Middleware)

// WithMode sets the enforcement mode. The default is ModeEnforce.
func WithMode(m Mode) Option {
	return func(mw *Middleware) { mw.mode = m }
}

// WithLogger sets the logger for verdicts. The default is slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(mw *Middleware) { mw.logger = l }
}

// New builds the security middleware over the given policies.
func New(policies []Policy, opts ...Option) *Middleware {
	mw := &Middleware{
		mode:     ModeEnforce,
		policies: policies,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(mw)
	}
	return mw
}

func (mw *Middleware) Name() string { return "security" }

func (mw *Middleware) Priority() int { return DefaultPriority }

// CanProcess skips evaluation entirely in disabled mode.
func (mw *Middleware) CanProcess(osl.Operation, *osl.ExecutionContext) bool {
	return mw.mode != ModeDisabled
}

// Before evaluates every required permission against every policy with
// deny-wins combining, then applies the enforcement mode to the verdict.
func (mw *Middleware) Before(ctx context.Context, op osl.Operation, ec *osl.ExecutionContext) (osl.Operation, error) {
	verdict := mw.evaluate(op, ec.Security)

	ec.SetMetadata("security.decision", verdict.Effect.String())
	if verdict.Reason != "" {
		ec.SetMetadata("security.reason", verdict.Reason)
	}

	if verdict.Effect != EffectDeny {
		return op, nil
	}

	attrs := []any{
		slog.String("principal", ec.Principal()),
		slog.String("operation_id", op.ID()),
		slog.String("operation_type", string(op.Type())),
		slog.String("reason", verdict.Reason),
	}
	if mw.mode == ModeLogOnly {
		mw.logger.WarnContext(ctx, "operation would be denied", attrs...)
		return op, nil
	}
	mw.logger.WarnContext(ctx, "operation denied", attrs...)
	return nil, osl.SecurityViolation(verdict.Reason)
}

// evaluate combines policy verdicts: any deny refuses, otherwise every
// permission needs at least one allow.
func (mw *Middleware) evaluate(op osl.Operation, sc *osl.SecurityContext) Decision {
	if sc == nil {
		return Deny("no security context")
	}
	perms := op.RequiredPermissions()
	if len(perms) == 0 {
		return Allow("no permissions required")
	}
	for _, perm := range perms {
		allowed := false
		for _, p := range mw.policies {
			d := p.Evaluate(perm, sc)
			switch d.Effect {
			case EffectDeny:
				return d
			case EffectAllow:
				allowed = true
			}
		}
		if !allowed {
			return Deny(fmt.Sprintf("no policy allows %s for %s", perm, sc.Principal))
		}
	}
	return Allow("all required permissions granted")
}

// OnError aborts the pipeline on this middleware's own denials so later
// middleware cannot soften a security verdict.
func (mw *Middleware) OnError(_ context.Context, opErr error, _ *osl.ExecutionContext) osl.ErrorAction {
	if osl.IsSecurityViolation(opErr) {
		return osl.Stop()
	}
	return osl.Continue()
}
