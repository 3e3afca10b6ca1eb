// Package middleware exposes HTTP middleware adapters for token
// authentication and permission enforcement built on top of
// authcore.Engine.
//
// # Guards
//
//   - [Guard] verifies the bearer token and injects its claims into the
//     request context.
//   - [RequirePermission] is Guard plus a single permission check against
//     the token's role.
//   - [RequireAllPermissions] is Guard plus a permission-set check.
//
// Each guard reads the Authorization header, calls the engine, and rejects
// with 401 on authentication failure or 403 on permission denial.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself; all decisions are delegated to
// the engine.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Engine.VerifyToken).
//   - Touch a store: the verify path never reads one.
//   - Make authorization decisions beyond pass/reject from the engine.
package middleware
