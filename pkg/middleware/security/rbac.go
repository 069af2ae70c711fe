package security

import (
	"fmt"
	"sort"

	"github.com/gobwas/glob"

	"github.com/airsstack/airssys-osl/pkg/osl"
)

// Role bundles permission grants under a name. Roles inherit transitively
// from other roles; inheritance cycles are rejected at construction.
type Role struct {
	// Permissions lists grants as "action" or "action:resource-glob",
	// e.g. "file:read:/etc/**" or "process:spawn". "*" grants all.
	Permissions []string

	// Inherits names roles whose grants this role also holds.
	Inherits []string
}

type rbacGrant struct {
	action   string
	resource glob.Glob
	all      bool
}

// RBAC maps principals to roles and resolves role inheritance into a
// flattened grant set per principal.
type RBAC struct {
	name     string
	bindings map[string][]string
	grants   map[string][]rbacGrant
}

var _ Policy = (*RBAC)(nil)

// NewRBAC builds a policy from role definitions and principal to role
// bindings. Bindings may reference the "*" principal to give everyone a
// role.
func NewRBAC(name string, roles map[string]Role, bindings map[string][]string) (*RBAC, error) {
	if name == "" {
		name = "rbac"
	}
	for principal, named := range bindings {
		for _, r := range named {
			if _, ok := roles[r]; !ok {
				return nil, fmt.Errorf("rbac: principal %q bound to unknown role %q", principal, r)
			}
		}
	}

	// Flatten inheritance once. A role's effective grants are its own
	// plus every ancestor's.
	flat := make(map[string][]rbacGrant, len(roles))
	names := make([]string, 0, len(roles))
	for n := range roles {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		grants, err := flattenRole(n, roles, map[string]bool{})
		if err != nil {
			return nil, err
		}
		flat[n] = grants
	}

	return &RBAC{name: name, bindings: bindings, grants: flat}, nil
}

func flattenRole(name string, roles map[string]Role, visiting map[string]bool) ([]rbacGrant, error) {
	if visiting[name] {
		return nil, fmt.Errorf("rbac: inheritance cycle through role %q", name)
	}
	role, ok := roles[name]
	if !ok {
		return nil, fmt.Errorf("rbac: role %q inherits unknown role", name)
	}
	visiting[name] = true
	defer delete(visiting, name)

	var grants []rbacGrant
	for _, p := range role.Permissions {
		g, err := parseGrant(p)
		if err != nil {
			return nil, fmt.Errorf("rbac: role %q: %w", name, err)
		}
		grants = append(grants, g)
	}
	for _, parent := range role.Inherits {
		inherited, err := flattenRole(parent, roles, visiting)
		if err != nil {
			return nil, err
		}
		grants = append(grants, inherited...)
	}
	return grants, nil
}

// parseGrant splits "action:resource-glob" on the second colon: actions
// themselves contain one colon ("file:read").
func parseGrant(s string) (rbacGrant, error) {
	if s == "*" {
		return rbacGrant{all: true}, nil
	}
	action := s
	pattern := ""
	colons := 0
	for i, r := range s {
		if r != ':' {
			continue
		}
		colons++
		if colons == 2 {
			action, pattern = s[:i], s[i+1:]
			break
		}
	}
	if action == "" {
		return rbacGrant{}, fmt.Errorf("empty permission grant")
	}
	g := rbacGrant{action: action}
	if pattern != "" {
		compiled, err := glob.Compile(pattern, '/')
		if err != nil {
			return rbacGrant{}, fmt.Errorf("grant %q: %w", s, err)
		}
		g.resource = compiled
	}
	return g, nil
}

func (r *RBAC) Name() string { return r.name }

// Evaluate allows perm when any role bound to the principal (directly or
// through "*") carries a matching grant. RBAC never denies, it abstains.
func (r *RBAC) Evaluate(perm osl.Permission, sc *osl.SecurityContext) Decision {
	named := append([]string{}, r.bindings[sc.Principal]...)
	named = append(named, r.bindings["*"]...)
	for _, roleName := range named {
		for _, g := range r.grants[roleName] {
			if !g.matches(perm) {
				continue
			}
			return Allow(fmt.Sprintf("%s: role %q grants %s", r.name, roleName, perm))
		}
	}
	return Abstain()
}

func (g rbacGrant) matches(perm osl.Permission) bool {
	if g.all {
		return true
	}
	if g.action != perm.Action {
		return false
	}
	if g.resource == nil {
		return true
	}
	return g.resource.Match(perm.Resource)
}
