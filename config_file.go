package authcore

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/holasoymalva/authcore/permission"
)

// fileConfig is the YAML shape of [Config]. Durations are written as Go
// duration strings ("15m", "720h"); sections left out keep their defaults.
type fileConfig struct {
	Token     *fileTokenConfig    `yaml:"token"`
	Password  *filePasswordConfig `yaml:"password"`
	Identity  *fileIdentityConfig `yaml:"identity"`
	Session   *fileSessionConfig  `yaml:"session"`
	Providers *fileProviderConfig `yaml:"providers"`
	Roles     []permission.Role   `yaml:"roles"`
	Audit     *fileAuditConfig    `yaml:"audit"`
	Metrics   *fileMetricsConfig  `yaml:"metrics"`
}

type fileTokenConfig struct {
	Secret     string `yaml:"secret"`
	DefaultTTL string `yaml:"default_ttl"`
	Issuer     string `yaml:"issuer"`
	Leeway     string `yaml:"leeway"`
}

type filePasswordConfig struct {
	MemoryKB         uint32 `yaml:"memory_kb"`
	Time             uint32 `yaml:"time"`
	Parallelism      uint8  `yaml:"parallelism"`
	SaltLength       uint32 `yaml:"salt_length"`
	KeyLength        uint32 `yaml:"key_length"`
	MaxPasswordBytes int    `yaml:"max_password_bytes"`
}

type fileIdentityConfig struct {
	RedisPrefix string `yaml:"redis_prefix"`
}

type fileSessionConfig struct {
	RedisPrefix string `yaml:"redis_prefix"`
	Retention   string `yaml:"retention"`
}

type fileProviderConfig struct {
	Enabled              []string `yaml:"enabled"`
	DefaultFederatedRole string   `yaml:"default_federated_role"`
}

type fileAuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

type fileMetricsConfig struct {
	Enabled           bool `yaml:"enabled"`
	LatencyHistograms bool `yaml:"latency_histograms"`
}

// LoadConfig reads a YAML config file and applies it over [DefaultConfig].
// The result is validated; a broken file never produces a half-usable Config.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML bytes over [DefaultConfig] and validates the
// result. Unknown fields are rejected so a typoed key fails loudly instead of
// silently keeping a default.
func ParseConfig(data []byte) (Config, error) {
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := DefaultConfig()
	if fc.Token != nil {
		if fc.Token.Secret != "" {
			cfg.Token.Secret = []byte(fc.Token.Secret)
		}
		cfg.Token.Issuer = fc.Token.Issuer
		if err := overlayDuration(&cfg.Token.DefaultTTL, fc.Token.DefaultTTL, "token.default_ttl"); err != nil {
			return Config{}, err
		}
		if err := overlayDuration(&cfg.Token.Leeway, fc.Token.Leeway, "token.leeway"); err != nil {
			return Config{}, err
		}
	}
	if fc.Password != nil {
		cfg.Password = PasswordConfig{
			Memory:           fc.Password.MemoryKB,
			Time:             fc.Password.Time,
			Parallelism:      fc.Password.Parallelism,
			SaltLength:       fc.Password.SaltLength,
			KeyLength:        fc.Password.KeyLength,
			MaxPasswordBytes: fc.Password.MaxPasswordBytes,
		}
	}
	if fc.Identity != nil {
		cfg.Identity.RedisPrefix = fc.Identity.RedisPrefix
	}
	if fc.Session != nil {
		cfg.Session.RedisPrefix = fc.Session.RedisPrefix
		if err := overlayDuration(&cfg.Session.Retention, fc.Session.Retention, "session.retention"); err != nil {
			return Config{}, err
		}
	}
	if fc.Providers != nil {
		cfg.Providers.Enabled = fc.Providers.Enabled
		cfg.Providers.DefaultFederatedRole = fc.Providers.DefaultFederatedRole
	}
	if len(fc.Roles) > 0 {
		cfg.Roles = fc.Roles
	}
	if fc.Audit != nil {
		cfg.Audit = AuditConfig{
			Enabled:    fc.Audit.Enabled,
			BufferSize: fc.Audit.BufferSize,
			DropIfFull: fc.Audit.DropIfFull,
		}
	}
	if fc.Metrics != nil {
		cfg.Metrics = MetricsConfig{
			Enabled:                 fc.Metrics.Enabled,
			EnableLatencyHistograms: fc.Metrics.LatencyHistograms,
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overlayDuration(dst *time.Duration, raw, field string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse config: %s: %w", field, err)
	}
	*dst = d
	return nil
}
