// Package authcore provides an embeddable authentication and authorization
// engine with HMAC-signed tokens, pluggable credential providers,
// role-inheritance RBAC, and Redis-backed identity and session stores.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (LoginResult, Claims, Snapshot, SecurityReport). The
// mechanics live in focused subpackages: token signing in token, credential
// verification in provider, role resolution in permission, stores in
// identity and session. The engine is the only place they are wired
// together.
//
// # What this package must NOT do
//
//   - Expose Redis clients, store internals, or wire encodings in its
//     public API.
//   - Reveal why an authentication attempt failed: every verifier failure
//     surfaces as [ErrAuthentication], with the cause recorded on the audit
//     trail and metrics only.
//   - Perform I/O at construction time. Build validates configuration and
//     allocates; the first store round-trip happens inside an Engine method.
//
// # Performance contract
//
// VerifyToken is the hot path. It completes without any store round-trip:
// signature, expiry, and issuer checks run entirely in memory, and
// permission checks read an in-memory table. Login is allowed one identity
// lookup plus one session append.
package authcore
