// Package identity defines the canonical identity model and the external
// store contract used to look up and provision identities.
//
// # Provisioning keys
//
// An identity is addressed by exactly one natural key depending on its
// provider: local identities by lowercased email, federated identities by
// (provider, external id). [Store] implementations must enforce uniqueness on
// that key so that provisioning the same external account twice always
// resolves to one identity.
//
// # Architecture boundaries
//
// This package owns the [Identity] model, the [Store] contract, and the
// reference adapters (in-memory and Redis). It does NOT verify credentials,
// issue tokens, or decide which provider handles a login; those
// responsibilities belong to the provider registry and the Engine.
//
// # What this package must NOT do
//
//   - Compare passwords or inspect assertions.
//   - Import authcore, token, provider, or session (no upward imports).
//   - Return secret-bearing fields through [Identity.Public].
package identity
