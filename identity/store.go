package identity

import (
	"context"
	"errors"
)

// ErrNotFound is returned by lookups that match no identity.
var ErrNotFound = errors.New("identity not found")

// ErrExists is returned by Create when the natural key (email for local,
// provider+external id for federated) is already claimed. Callers recover by
// re-reading the winning record.
var ErrExists = errors.New("identity already exists")

// ErrStoreUnavailable is returned when the backing store cannot be reached.
var ErrStoreUnavailable = errors.New("identity store unavailable")

// Store is the external identity persistence collaborator. Implementations
// must be safe for concurrent use and must honor context cancellation on
// every call.
//
// Uniqueness contract: Create must reject, with [ErrExists], any identity
// whose natural key is already present: lowercased email for local
// identities, (provider, external id) for federated ones. This is what makes
// auto-provisioning idempotent under concurrent logins.
type Store interface {
	// GetByEmail resolves a local identity by its normalized email.
	GetByEmail(ctx context.Context, email string) (Identity, error)

	// GetByExternalID resolves a federated identity by provider tag and the
	// id the provider knows it by.
	GetByExternalID(ctx context.Context, provider, externalID string) (Identity, error)

	// GetByID resolves any identity by its stable id.
	GetByID(ctx context.Context, id string) (Identity, error)

	// Create persists a new identity. The caller allocates the id; the store
	// enforces the uniqueness contract above.
	Create(ctx context.Context, id Identity) (Identity, error)
}
