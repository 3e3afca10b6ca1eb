package permission

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Wildcard grants every permission, including ones that did not exist when
// the table was built. It is an explicit, auditable escape hatch reserved
// for administrative roles, never implicit.
const Wildcard = "*"

// ErrCycle is returned by NewTable when the inheritance graph revisits a
// role before reaching a root.
var ErrCycle = errors.New("role inheritance cycle")

// Role declares one role as loaded from configuration.
type Role struct {
	Name        string   `json:"name" yaml:"name"`
	Permissions []string `json:"permissions" yaml:"permissions"`
	Inherits    string   `json:"inherits,omitempty" yaml:"inherits,omitempty"`
}

type compiledRole struct {
	name     string
	perms    map[string]struct{}
	wildcard bool
	parent   string
}

// Table is an immutable compiled role table. Construction performs all
// structural validation; a constructed Table answers checks without locking
// and is safe for unbounded concurrent readers.
type Table struct {
	roles map[string]*compiledRole
}

// NewTable compiles the role list. Empty or duplicate role names, empty
// permission strings, dangling Inherits references, and inheritance cycles
// all fail construction, so none of them can surface mid-request.
func NewTable(roles []Role) (*Table, error) {
	compiled := make(map[string]*compiledRole, len(roles))

	for _, role := range roles {
		name := strings.TrimSpace(role.Name)
		if name == "" {
			return nil, errors.New("role name cannot be empty")
		}
		if _, exists := compiled[name]; exists {
			return nil, fmt.Errorf("duplicate role %q", name)
		}

		perms := make(map[string]struct{}, len(role.Permissions))
		wildcard := false
		for _, perm := range role.Permissions {
			if perm == "" {
				return nil, fmt.Errorf("role %q declares an empty permission", name)
			}
			if perm == Wildcard {
				wildcard = true
			}
			perms[perm] = struct{}{}
		}

		compiled[name] = &compiledRole{
			name:     name,
			perms:    perms,
			wildcard: wildcard,
			parent:   strings.TrimSpace(role.Inherits),
		}
	}

	for _, role := range compiled {
		if role.parent == "" {
			continue
		}
		if _, ok := compiled[role.parent]; !ok {
			return nil, fmt.Errorf("role %q inherits unknown role %q", role.name, role.parent)
		}
	}

	// Eager cycle detection: walk every chain before the table is served.
	for _, role := range compiled {
		if err := walkForCycle(compiled, role); err != nil {
			return nil, err
		}
	}

	return &Table{roles: compiled}, nil
}

func walkForCycle(roles map[string]*compiledRole, start *compiledRole) error {
	visited := map[string]struct{}{start.name: {}}
	chain := []string{start.name}

	current := start
	for current.parent != "" {
		if _, seen := visited[current.parent]; seen {
			chain = append(chain, current.parent)
			return fmt.Errorf("%w: %s", ErrCycle, strings.Join(chain, " -> "))
		}
		visited[current.parent] = struct{}{}
		chain = append(chain, current.parent)
		current = roles[current.parent]
	}
	return nil
}

// Check walks the inheritance chain from roleName. At each role a wildcard
// or direct membership short-circuits true; an unknown role, an exhausted
// chain, or a revisited role resolves false.
func (t *Table) Check(roleName, perm string) bool {
	if t == nil || perm == "" {
		return false
	}

	visited := make(map[string]struct{}, 4)
	current, ok := t.roles[roleName]
	for ok {
		if _, seen := visited[current.name]; seen {
			return false
		}
		visited[current.name] = struct{}{}

		if current.wildcard {
			return true
		}
		if _, has := current.perms[perm]; has {
			return true
		}

		if current.parent == "" {
			return false
		}
		current, ok = t.roles[current.parent]
	}
	return false
}

// CheckAll reports whether every permission individually satisfies Check.
// An empty permission list is vacuously true.
func (t *Table) CheckAll(roleName string, perms []string) bool {
	for _, perm := range perms {
		if !t.Check(roleName, perm) {
			return false
		}
	}
	return true
}

// Has reports whether the table defines the named role.
func (t *Table) Has(roleName string) bool {
	if t == nil {
		return false
	}
	_, ok := t.roles[roleName]
	return ok
}

// Len returns the number of defined roles.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.roles)
}

// Names returns the defined role names, sorted.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.roles))
	for name := range t.roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WildcardRoles returns the names of roles carrying the wildcard grant,
// sorted. Operators review this list; wildcard is never implicit.
func (t *Table) WildcardRoles() []string {
	if t == nil {
		return nil
	}
	var names []string
	for name, role := range t.roles {
		if role.wildcard {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
