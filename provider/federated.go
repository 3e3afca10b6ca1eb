package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/holasoymalva/authcore/identity"
)

// FederatedConfig assembles a FederatedVerifier.
type FederatedConfig struct {
	// Tag is the provider tag this verifier serves, e.g. "github".
	Tag string

	// Validator checks assertions with the external identity provider.
	Validator AssertionValidator

	// Store holds provisioned identities.
	Store identity.Store

	// DefaultRole is assigned to identities provisioned by this verifier.
	DefaultRole string

	// OnProvision, if set, is invoked once for each identity this verifier
	// creates, with the context of the login that triggered provisioning.
	// Race losers that adopt another login's record do not fire it.
	OnProvision func(context.Context, identity.Identity)
}

// FederatedVerifier validates assertions with an external identity provider
// and auto-provisions identities on first contact.
type FederatedVerifier struct {
	tag         string
	validator   AssertionValidator
	store       identity.Store
	defaultRole string
	onProvision func(context.Context, identity.Identity)
}

// NewFederatedVerifier validates the configuration and returns the verifier.
func NewFederatedVerifier(cfg FederatedConfig) (*FederatedVerifier, error) {
	if cfg.Tag == "" {
		return nil, errors.New("federated verifier requires a provider tag")
	}
	if cfg.Tag == identity.ProviderLocal {
		return nil, fmt.Errorf("provider tag %q is reserved for local verification", identity.ProviderLocal)
	}
	if cfg.Validator == nil {
		return nil, errors.New("federated verifier requires an assertion validator")
	}
	if cfg.Store == nil {
		return nil, errors.New("federated verifier requires an identity store")
	}
	if cfg.DefaultRole == "" {
		return nil, errors.New("federated verifier requires a default role")
	}

	return &FederatedVerifier{
		tag:         cfg.Tag,
		validator:   cfg.Validator,
		store:       cfg.Store,
		defaultRole: cfg.DefaultRole,
		onProvision: cfg.OnProvision,
	}, nil
}

// Tag implements Verifier.
func (v *FederatedVerifier) Tag() string { return v.tag }

// Verify validates the assertion, then resolves the external subject to a
// stored identity, provisioning one on first contact.
func (v *FederatedVerifier) Verify(ctx context.Context, cred Credential) (identity.Identity, error) {
	if cred.Assertion == "" {
		return identity.Identity{}, ErrInvalidCredential
	}

	profile, err := v.validator.Validate(ctx, cred.Assertion)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("%w: %v", ErrExternalProvider, err)
	}
	if profile.ExternalID == "" {
		return identity.Identity{}, fmt.Errorf("%w: validator returned empty subject", ErrExternalProvider)
	}

	id, err := v.store.GetByExternalID(ctx, v.tag, profile.ExternalID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, identity.ErrNotFound) {
		return identity.Identity{}, fmt.Errorf("federated lookup: %w", err)
	}

	return v.provision(ctx, profile)
}

func (v *FederatedVerifier) provision(ctx context.Context, profile Profile) (identity.Identity, error) {
	created := identity.Identity{
		ID:          uuid.NewString(),
		DisplayName: profile.DisplayName,
		Email:       identity.NormalizeEmail(profile.Email),
		Role:        v.defaultRole,
		Provider:    v.tag,
		ExternalID:  profile.ExternalID,
		CreatedAt:   time.Now().UTC(),
	}

	stored, err := v.store.Create(ctx, created)
	switch {
	case err == nil:
		if v.onProvision != nil {
			v.onProvision(ctx, stored)
		}
		return stored, nil
	case errors.Is(err, identity.ErrExists):
		// Lost the provisioning race; the winner's record is authoritative.
		return v.store.GetByExternalID(ctx, v.tag, profile.ExternalID)
	default:
		return identity.Identity{}, fmt.Errorf("provision: %w", err)
	}
}
