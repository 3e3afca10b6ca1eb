package authcore

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/holasoymalva/authcore/identity"
	"github.com/holasoymalva/authcore/password"
	"github.com/holasoymalva/authcore/permission"
	"github.com/holasoymalva/authcore/provider"
	"github.com/holasoymalva/authcore/session"
	"github.com/holasoymalva/authcore/token"
)

// Builder assembles an [Engine] from a [Config] and its collaborators. A
// Builder is single-use: Build succeeds at most once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	identities IdentityStore
	passwords  PasswordVerifier
	validators map[string]AssertionValidator
	sessions   SessionStore
	auditSink  AuditSink
	logger     *slog.Logger

	built bool
}

// New starts a builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration. The config is copied, so
// later mutations by the caller do not leak into Build.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies a shared Redis client. Build constructs Redis-backed
// identity and session stores from it for any store not given explicitly.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithIdentityStore supplies the identity persistence collaborator. Takes
// precedence over a store derived from [Builder.WithRedis].
func (b *Builder) WithIdentityStore(store IdentityStore) *Builder {
	b.identities = store
	return b
}

// WithPasswordVerifier replaces the built-in argon2id hasher for local
// credential checks.
func (b *Builder) WithPasswordVerifier(v PasswordVerifier) *Builder {
	b.passwords = v
	return b
}

// WithAssertionValidator binds a federated provider tag to its upstream
// validator. Every non-local tag in Providers.Enabled needs one.
func (b *Builder) WithAssertionValidator(tag string, v AssertionValidator) *Builder {
	if b.validators == nil {
		b.validators = make(map[string]AssertionValidator)
	}
	b.validators[tag] = v
	return b
}

// WithSessionStore supplies the session journal store. Takes precedence over
// a store derived from [Builder.WithRedis].
func (b *Builder) WithSessionStore(store SessionStore) *Builder {
	b.sessions = store
	return b
}

// WithAuditSink sets the sink the audit dispatcher delivers to. Ignored
// unless Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. Defaults to [slog.Default].
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles metric collection without replacing the whole
// config.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the verify latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the engine. Every failure here
// carries [KindConfig]: a misconfigured engine never exists, so config
// problems cannot surface mid-request later.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, configError(errors.New("builder already used"))
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, configError(err)
	}

	identities := b.identities
	if identities == nil && b.redis != nil {
		identities = identity.NewRedisStore(b.redis, cfg.Identity.RedisPrefix)
	}
	if identities == nil {
		return nil, configError(errors.New("identity store required"))
	}

	sessions := b.sessions
	if sessions == nil && b.redis != nil {
		sessions = session.NewRedisStore(b.redis, cfg.Session.RedisPrefix, cfg.Session.Retention)
	}
	if sessions == nil {
		return nil, configError(errors.New("session store required"))
	}

	tokens, err := token.NewManager(token.Config{
		Secret:     cfg.Token.Secret,
		DefaultTTL: cfg.Token.DefaultTTL,
		Issuer:     cfg.Token.Issuer,
		Leeway:     cfg.Token.Leeway,
	})
	if err != nil {
		return nil, configError(err)
	}

	table, err := permission.NewTable(cfg.Roles)
	if err != nil {
		return nil, configError(err)
	}

	recorder, err := session.NewRecorder(sessions)
	if err != nil {
		return nil, configError(err)
	}

	engine := &Engine{
		config:   cfg,
		tokens:   tokens,
		resolver: permission.NewResolver(table),
		recorder: recorder,
		metrics:  NewMetrics(cfg.Metrics),
		audit:    newAuditDispatcher(cfg.Audit, b.auditSink),
		logger:   b.logger,
	}
	if engine.logger == nil {
		engine.logger = slog.Default()
	}

	verifiers := make([]provider.Verifier, 0, len(cfg.Providers.Enabled))
	for _, tag := range cfg.Providers.Enabled {
		if tag == identity.ProviderLocal {
			passwords := b.passwords
			if passwords == nil {
				hasher, err := password.NewHasher(password.Config{
					Memory:           cfg.Password.Memory,
					Time:             cfg.Password.Time,
					Parallelism:      cfg.Password.Parallelism,
					SaltLength:       cfg.Password.SaltLength,
					KeyLength:        cfg.Password.KeyLength,
					MaxPasswordBytes: cfg.Password.MaxPasswordBytes,
				})
				if err != nil {
					return nil, configError(err)
				}
				passwords = hasher
				engine.passwordParams = PasswordConfigReport{
					Memory:      cfg.Password.Memory,
					Time:        cfg.Password.Time,
					Parallelism: cfg.Password.Parallelism,
					SaltLength:  cfg.Password.SaltLength,
					KeyLength:   cfg.Password.KeyLength,
				}
			}
			local, err := provider.NewLocalVerifier(identities, passwords)
			if err != nil {
				return nil, configError(err)
			}
			verifiers = append(verifiers, local)
			continue
		}

		validator := b.validators[tag]
		if validator == nil {
			return nil, configError(fmt.Errorf("provider %q enabled without an assertion validator", tag))
		}
		federated, err := provider.NewFederatedVerifier(provider.FederatedConfig{
			Tag:         tag,
			Validator:   validator,
			Store:       identities,
			DefaultRole: cfg.Providers.DefaultFederatedRole,
			OnProvision: engine.onProvision,
		})
		if err != nil {
			return nil, configError(err)
		}
		verifiers = append(verifiers, federated)
	}

	registry, err := provider.NewRegistry(verifiers...)
	if err != nil {
		return nil, configError(err)
	}
	engine.registry = registry

	b.built = true
	return engine, nil
}

func configError(err error) error {
	return newError(KindConfig, "invalid configuration", err)
}
