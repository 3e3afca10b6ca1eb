// Package permission provides the role table and the resolution algorithm
// behind authorization checks: role inheritance walks with an explicit
// wildcard grant.
//
// # Role model
//
// A role names a set of permission strings and may inherit one parent role.
// Tables are built once by [NewTable], which rejects duplicate roles,
// dangling parents, and inheritance cycles. A table that constructs is
// cycle-free, so [Table.Check] can never loop at request time; the visited
// set inside Check only bounds walks over hand-assembled tables.
//
// # Architecture boundaries
//
// This package is a pure in-memory data structure with no I/O. Reload
// semantics (build a new table, swap atomically) live in [Resolver].
//
// # What this package must NOT do
//
//   - Access Redis, databases, or the network.
//   - Import authcore, token, identity, or session.
//   - Mutate a constructed [Table]; reloads swap whole tables.
package permission
