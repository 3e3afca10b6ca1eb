package authcore

import (
	"time"

	"github.com/holasoymalva/authcore/identity"
	"github.com/holasoymalva/authcore/permission"
	"github.com/holasoymalva/authcore/provider"
	"github.com/holasoymalva/authcore/session"
	"github.com/holasoymalva/authcore/token"
)

// Identity is the full identity record persisted by an [IdentityStore].
// It carries secret-bearing fields; login results expose [PublicIdentity]
// instead.
type Identity = identity.Identity

// PublicIdentity is the identity view with secret-bearing fields stripped.
type PublicIdentity = identity.PublicIdentity

// IdentityStore is the persistence collaborator the engine reads identities
// from. [identity.NewMemoryStore] and [identity.NewRedisStore] implement it.
type IdentityStore = identity.Store

// Claims is the structured token payload.
type Claims = token.Claims

// Credential is the polymorphic login input: Email+Password for the local
// provider, Assertion for federated ones.
type Credential = provider.Credential

// Profile is the subject description a federated provider vouches for.
type Profile = provider.Profile

// PasswordVerifier checks a plaintext password against a stored hash.
// [password.Hasher] satisfies it.
type PasswordVerifier = provider.PasswordVerifier

// AssertionValidator verifies a federated assertion with its upstream and
// returns the vouched profile.
type AssertionValidator = provider.AssertionValidator

// Session is one append-only session record.
type Session = session.Session

// SessionStore persists session records. [session.NewMemoryStore] and
// [session.NewRedisStore] implement it.
type SessionStore = session.Store

// Role declares one entry of the role table.
type Role = permission.Role

// LoginResult is returned by [Engine.Login] on success. SessionID may be
// empty when session recording failed; the login still succeeded.
type LoginResult struct {
	Token     string
	SessionID string
	Identity  PublicIdentity
}

// SecurityReport is a read-only snapshot of the engine's security posture,
// returned by [Engine.SecurityReport].
type SecurityReport struct {
	SigningAlgorithm string
	TokenTTL         time.Duration
	TokenLeeway      time.Duration
	Issuer           string
	Providers        []string
	RoleCount        int
	WildcardRoles    []string
	SessionRetention time.Duration
	AuditEnabled     bool
	MetricsEnabled   bool
	Argon2           PasswordConfigReport
}

// PasswordConfigReport contains the argon2 parameters active in the engine.
// Zero when the caller supplied its own password verifier.
type PasswordConfigReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}
