package provider

import (
	"context"
	"errors"

	"github.com/holasoymalva/authcore/identity"
)

var (
	// ErrUnsupportedProvider reports a provider tag with no configured verifier.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrInvalidCredential reports a credential that failed verification.
	// It deliberately carries no detail about which part failed.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrExternalProvider reports a failure at the external identity
	// provider: the assertion was rejected or the provider was unreachable.
	ErrExternalProvider = errors.New("external provider failure")
)

// Credential carries the caller-supplied proof of identity. Local logins
// fill Email and Password; federated logins fill Assertion.
type Credential struct {
	Email     string
	Password  string
	Assertion string
}

// Profile describes the subject an external identity provider vouches for
// after validating an assertion.
type Profile struct {
	ExternalID  string
	Email       string
	DisplayName string
}

// PasswordVerifier checks a plaintext password against a stored hash.
// Satisfied by password.Hasher.
type PasswordVerifier interface {
	Verify(password, hash string) (bool, error)
}

// AssertionValidator validates a federated assertion with the external
// identity provider and returns the profile it vouches for.
type AssertionValidator interface {
	Validate(ctx context.Context, assertion string) (Profile, error)
}

// Verifier verifies one provider's credential shape and resolves it to a
// stored identity.
type Verifier interface {
	// Tag returns the provider tag this verifier serves, e.g. "local".
	Tag() string

	// Verify checks the credential and returns the identity it belongs to.
	Verify(ctx context.Context, cred Credential) (identity.Identity, error)
}
