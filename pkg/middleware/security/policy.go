// Package security provides the policy enforcement middleware: ACL and
// RBAC policies evaluated against every operation's required permissions
// before it reaches an executor.
package security

import (
	"github.com/airsstack/airssys-osl/pkg/osl"
)

// Effect is the verdict a policy reaches for a permission check.
type Effect int

const (
	// EffectAbstain means the policy has no opinion on the request.
	EffectAbstain Effect = iota
	// EffectAllow grants the request.
	EffectAllow
	// EffectDeny refuses the request. Deny always wins over allow.
	EffectDeny
)

func (e Effect) String() string {
	switch e {
	case EffectAllow:
		return "allow"
	case EffectDeny:
		return "deny"
	default:
		return "abstain"
	}
}

// Decision is a policy verdict with the reason behind it.
type Decision struct {
	Effect Effect
	Reason string
}

// Allow builds an allowing decision.
func Allow(reason string) Decision { return Decision{Effect: EffectAllow, Reason: reason} }

// Deny builds a denying decision.
func Deny(reason string) Decision { return Decision{Effect: EffectDeny, Reason: reason} }

// Abstain builds a no-opinion decision.
func Abstain() Decision { return Decision{Effect: EffectAbstain} }

// Policy evaluates a single permission requirement for a principal.
// Policies are consulted independently for every required permission of
// an operation; the middleware combines verdicts with deny-wins.
type Policy interface {
	// Name identifies the policy in audit records and deny reasons.
	Name() string

	// Evaluate returns the policy's verdict for the principal holding
	// the security context requesting perm.
	Evaluate(perm osl.Permission, sc *osl.SecurityContext) Decision
}
