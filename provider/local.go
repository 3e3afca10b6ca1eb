package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/holasoymalva/authcore/identity"
)

// LocalVerifier resolves email/password credentials against locally stored
// identities.
type LocalVerifier struct {
	store     identity.Store
	passwords PasswordVerifier
}

// NewLocalVerifier returns a verifier for the "local" provider tag.
func NewLocalVerifier(store identity.Store, passwords PasswordVerifier) (*LocalVerifier, error) {
	if store == nil {
		return nil, errors.New("local verifier requires an identity store")
	}
	if passwords == nil {
		return nil, errors.New("local verifier requires a password verifier")
	}
	return &LocalVerifier{store: store, passwords: passwords}, nil
}

// Tag implements Verifier.
func (v *LocalVerifier) Tag() string { return identity.ProviderLocal }

// Verify maps every mismatch (unknown email, wrong password, unusable
// stored hash) to ErrInvalidCredential. Store outages surface as their own
// error so callers can tell an outage from a bad credential.
func (v *LocalVerifier) Verify(ctx context.Context, cred Credential) (identity.Identity, error) {
	email := identity.NormalizeEmail(cred.Email)
	if email == "" || cred.Password == "" {
		return identity.Identity{}, ErrInvalidCredential
	}

	id, err := v.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return identity.Identity{}, ErrInvalidCredential
		}
		return identity.Identity{}, fmt.Errorf("local lookup: %w", err)
	}

	ok, err := v.passwords.Verify(cred.Password, id.PasswordHash)
	if err != nil || !ok {
		return identity.Identity{}, ErrInvalidCredential
	}

	return id, nil
}
