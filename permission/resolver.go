package permission

import "sync/atomic"

// Resolver serves permission checks against an atomically swappable Table.
// Reloading roles replaces the table in one pointer store; in-flight checks
// finish against the table they started with and a failed reload leaves the
// previous table serving untouched.
type Resolver struct {
	table atomic.Pointer[Table]
}

// NewResolver returns a Resolver serving the given table.
func NewResolver(table *Table) *Resolver {
	r := &Resolver{}
	r.table.Store(table)
	return r
}

// Swap compiles the new role list and installs it. On error the active
// table is left unchanged.
func (r *Resolver) Swap(roles []Role) error {
	table, err := NewTable(roles)
	if err != nil {
		return err
	}
	r.table.Store(table)
	return nil
}

// Table returns the currently active table.
func (r *Resolver) Table() *Table {
	return r.table.Load()
}

// Check resolves one permission against the active table.
func (r *Resolver) Check(roleName, perm string) bool {
	return r.table.Load().Check(roleName, perm)
}

// CheckAll resolves a permission set against the active table.
func (r *Resolver) CheckAll(roleName string, perms []string) bool {
	return r.table.Load().CheckAll(roleName, perms)
}
