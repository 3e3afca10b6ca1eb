package identity

import (
	"strings"
	"time"
)

// ProviderLocal tags identities verified against a stored password hash.
// Federated identities carry the tag of the provider that vouched for them.
const ProviderLocal = "local"

// Identity is the full identity record as persisted by a [Store]. It carries
// the password hash for local identities and must never be returned to
// callers outside the engine; use [Identity.Public] at API boundaries.
type Identity struct {
	// ID is stable and provider-independent. It is allocated exactly once,
	// on first successful verification, and never changes afterwards no
	// matter how many times the same account logs in.
	ID           string    `json:"id"`
	DisplayName  string    `json:"display_name,omitempty"`
	Email        string    `json:"email,omitempty"`
	Role         string    `json:"role"`
	Provider     string    `json:"provider"`
	ExternalID   string    `json:"external_id,omitempty"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicIdentity is the filtered identity view with secret-bearing fields
// stripped. This is the only identity shape login results expose.
type PublicIdentity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role"`
	Provider    string `json:"provider"`
}

// Public strips secret-bearing fields.
func (id Identity) Public() PublicIdentity {
	return PublicIdentity{
		ID:          id.ID,
		DisplayName: id.DisplayName,
		Email:       id.Email,
		Role:        id.Role,
		Provider:    id.Provider,
	}
}

// IsLocal reports whether the identity authenticates with a stored hash.
func (id Identity) IsLocal() bool {
	return id.Provider == ProviderLocal
}

// NormalizeEmail lowercases and trims an email for use as a store key.
// Stores index local identities by the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
