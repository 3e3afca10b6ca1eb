package authcore

import (
	"errors"
	"fmt"
	"time"

	"github.com/holasoymalva/authcore/identity"
	"github.com/holasoymalva/authcore/password"
	"github.com/holasoymalva/authcore/permission"
)

// Config is the full construction surface of the engine. It is consumed once
// at Build; the engine deep-copies it, so mutating a Config after Build has
// no effect on a running engine.
type Config struct {
	Token     TokenConfig
	Password  PasswordConfig
	Identity  IdentityConfig
	Session   SessionConfig
	Providers ProviderConfig
	Roles     []permission.Role
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig sets the signing parameters handed to the token manager.
type TokenConfig struct {
	// Secret keys the HMAC. Required; Build fails without it.
	Secret []byte
	// DefaultTTL applies when IssueToken is called with a non-positive ttl.
	DefaultTTL time.Duration
	// Issuer, when set, is stamped into every token and required on verify.
	Issuer string
	// Leeway tolerates clock skew between issuer and verifier.
	Leeway time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig sets the argon2id parameters for the built-in hasher. It is
// ignored when the builder is given an explicit password verifier.
type PasswordConfig struct {
	Memory           uint32 // in KB
	Time             uint32
	Parallelism      uint8
	SaltLength       uint32
	KeyLength        uint32
	MaxPasswordBytes int
}

/*
====================================
STORE CONFIG
====================================
*/

// IdentityConfig namespaces the Redis identity adapter when the builder
// constructs it from a shared client.
type IdentityConfig struct {
	RedisPrefix string
}

// SessionConfig shapes the session journal's Redis adapter.
type SessionConfig struct {
	RedisPrefix string
	// Retention bounds how long session records stay readable. Zero keeps
	// them forever.
	Retention time.Duration
}

/*
====================================
PROVIDER CONFIG
====================================
*/

// ProviderConfig declares which credential verifiers Login will dispatch to.
type ProviderConfig struct {
	// Enabled lists the provider tags accepted at login. Every non-local tag
	// needs an assertion validator supplied to the builder.
	Enabled []string
	// DefaultFederatedRole is stamped on identities auto-provisioned by
	// federated verifiers. Required when any federated provider is enabled;
	// must name a role from the role table.
	DefaultFederatedRole string
}

/*
====================================
AUDIT + METRICS CONFIG
====================================
*/

// AuditConfig shapes the asynchronous audit pipeline.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles the engine's internal counters and histograms.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration. It has no signing secret
// and no roles, so it does not validate as-is; callers fill those in.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			DefaultTTL: 15 * time.Minute,
			Leeway:     30 * time.Second,
		},
		Password: PasswordConfig{
			Memory:           65536,
			Time:             3,
			Parallelism:      2,
			SaltLength:       16,
			KeyLength:        32,
			MaxPasswordBytes: password.DefaultMaxPasswordBytes,
		},
		Identity: IdentityConfig{
			RedisPrefix: "ai",
		},
		Session: SessionConfig{
			RedisPrefix: "as",
			Retention:   30 * 24 * time.Hour,
		},
		Providers: ProviderConfig{
			Enabled: []string{identity.ProviderLocal},
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = cloneBytes(cfg.Token.Secret)
	out.Providers.Enabled = cloneStrings(cfg.Providers.Enabled)
	if len(cfg.Roles) > 0 {
		out.Roles = make([]permission.Role, len(cfg.Roles))
		copy(out.Roles, cfg.Roles)
		for i := range out.Roles {
			out.Roles[i].Permissions = cloneStrings(cfg.Roles[i].Permissions)
		}
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the construction surface one rule at a time and returns the
// first violation. It includes compiling the role table, so a cyclic or
// dangling inheritance chain is caught here, before any request is served.
func (c *Config) Validate() error {
	// Token
	if len(c.Token.Secret) == 0 {
		return errors.New("Token Secret must be provided")
	}
	if len(c.Token.Secret) < 32 {
		return errors.New("Token Secret must be at least 32 bytes")
	}
	if c.Token.DefaultTTL <= 0 {
		return errors.New("Token DefaultTTL must be > 0")
	}
	if c.Token.Leeway < 0 {
		return errors.New("Token Leeway must be >= 0")
	}
	if c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be <= 2m")
	}

	// Password
	if c.Password.Memory < 8192 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}
	if c.Password.MaxPasswordBytes < 0 {
		return errors.New("Password MaxPasswordBytes must be >= 0")
	}

	// Session
	if c.Session.Retention < 0 {
		return errors.New("Session Retention must be >= 0")
	}

	// Providers
	if len(c.Providers.Enabled) == 0 {
		return errors.New("Providers Enabled must list at least one provider")
	}
	seen := make(map[string]struct{}, len(c.Providers.Enabled))
	federated := false
	for _, tag := range c.Providers.Enabled {
		if tag == "" {
			return errors.New("Providers Enabled must not contain empty tags")
		}
		if _, dup := seen[tag]; dup {
			return fmt.Errorf("Providers Enabled lists %q twice", tag)
		}
		seen[tag] = struct{}{}
		if tag != identity.ProviderLocal {
			federated = true
		}
	}
	if federated && c.Providers.DefaultFederatedRole == "" {
		return errors.New("Providers DefaultFederatedRole required when a federated provider is enabled")
	}
	if c.Providers.DefaultFederatedRole != "" && !roleNamed(c.Roles, c.Providers.DefaultFederatedRole) {
		return fmt.Errorf("Providers DefaultFederatedRole %q is not in the role table", c.Providers.DefaultFederatedRole)
	}

	// Roles
	if len(c.Roles) == 0 {
		return errors.New("Roles must define at least one role")
	}
	if _, err := permission.NewTable(c.Roles); err != nil {
		return fmt.Errorf("Roles: %w", err)
	}

	// Audit
	if c.Audit.BufferSize < 0 {
		return errors.New("Audit BufferSize must be >= 0")
	}

	return nil
}

func roleNamed(roles []permission.Role, name string) bool {
	for _, r := range roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
