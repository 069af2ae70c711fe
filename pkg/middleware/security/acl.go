package security

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/airsstack/airssys-osl/pkg/osl"
)

// ACLEntry grants or refuses a set of actions on resources matching glob
// patterns for one principal. A "*" principal applies to everyone.
type ACLEntry struct {
	// Principal names the subject, or "*" for any principal.
	Principal string

	// Actions lists permission actions ("file:read", ...) or "*".
	Actions []string

	// Resources lists glob patterns matched against the permission
	// resource with '/' as separator. Empty matches resource-less
	// permissions and any resource.
	Resources []string

	// Deny flips the entry from a grant to a refusal.
	Deny bool
}

type compiledEntry struct {
	entry     ACLEntry
	resources []glob.Glob
}

// ACL is a principal-scoped access control list. Entries are evaluated in
// order added; a matching deny entry wins over any allow.
type ACL struct {
	name    string
	entries []compiledEntry
}

var _ Policy = (*ACL)(nil)

// NewACL compiles entries into a policy. Resource patterns use glob
// syntax with '/' as separator, so "/tmp/**" covers the whole subtree.
func NewACL(name string, entries []ACLEntry) (*ACL, error) {
	if name == "" {
		name = "acl"
	}
	a := &ACL{name: name}
	for i, e := range entries {
		if e.Principal == "" {
			return nil, fmt.Errorf("acl entry %d: principal is empty", i)
		}
		if len(e.Actions) == 0 {
			return nil, fmt.Errorf("acl entry %d: no actions", i)
		}
		ce := compiledEntry{entry: e}
		for _, pat := range e.Resources {
			g, err := glob.Compile(pat, '/')
			if err != nil {
				return nil, fmt.Errorf("acl entry %d: resource pattern %q: %w", i, pat, err)
			}
			ce.resources = append(ce.resources, g)
		}
		a.entries = append(a.entries, ce)
	}
	return a, nil
}

func (a *ACL) Name() string { return a.name }

// Evaluate checks perm against the list. Deny entries win, then allow,
// then abstain when nothing matches.
func (a *ACL) Evaluate(perm osl.Permission, sc *osl.SecurityContext) Decision {
	allowed := false
	allowReason := ""
	for _, ce := range a.entries {
		if !ce.matches(perm, sc.Principal) {
			continue
		}
		if ce.entry.Deny {
			return Deny(fmt.Sprintf("%s: denied %s for %s", a.name, perm, sc.Principal))
		}
		allowed = true
		allowReason = fmt.Sprintf("%s: granted %s for %s", a.name, perm, sc.Principal)
	}
	if allowed {
		return Allow(allowReason)
	}
	return Abstain()
}

func (ce compiledEntry) matches(perm osl.Permission, principal string) bool {
	if ce.entry.Principal != "*" && ce.entry.Principal != principal {
		return false
	}
	actionOK := false
	for _, act := range ce.entry.Actions {
		if act == "*" || act == perm.Action {
			actionOK = true
			break
		}
	}
	if !actionOK {
		return false
	}
	if len(ce.resources) == 0 {
		return true
	}
	for _, g := range ce.resources {
		if g.Match(perm.Resource) {
			return true
		}
	}
	return false
}
