// Package provider implements credential verification for the configured
// identity providers.
//
// A [Verifier] resolves one credential shape to a stored identity:
// [LocalVerifier] checks email/password pairs against locally stored hashes,
// and [FederatedVerifier] validates opaque assertions with an external
// identity provider, auto-provisioning an identity on first contact. The
// [Registry] maps provider tags to their verifiers and is assembled once at
// engine construction.
//
// # Provisioning
//
// Federated identities are keyed by (provider, external subject). Provisioning
// is idempotent: concurrent first logins race on the identity store's
// uniqueness guarantee and the losers adopt the winner's record, so one
// external subject always maps to exactly one identity.
//
// # Architecture boundaries
//
// This package decides whether a credential is valid and which identity it
// belongs to. Token issuance, session recording, and the collapse of failure
// detail into a uniform authentication error are the Engine's job.
//
// # What this package must NOT do
//
//   - Issue or parse tokens.
//   - Log credential material.
//   - Distinguish "unknown user" from "wrong password" in returned errors.
package provider
