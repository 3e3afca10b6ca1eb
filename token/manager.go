package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Algorithm is the only signing algorithm the manager issues or accepts.
const Algorithm = "HS256"

// ErrNoSecret is returned by NewManager when no signing secret is configured.
var ErrNoSecret = errors.New("signing secret not configured")

// ErrMalformed is returned by Verify and Decode when the token structure
// cannot be parsed or its claims cannot be accepted.
var ErrMalformed = errors.New("malformed token")

// ErrSignatureInvalid is returned by Verify when the recomputed MAC does not
// match the signature segment.
var ErrSignatureInvalid = errors.New("invalid token signature")

// ErrExpired is returned by Verify when the token is past its expiry.
var ErrExpired = errors.New("token expired")

// Config holds the immutable signing parameters consumed at construction.
type Config struct {
	// Secret keys the HMAC. Verification recomputes the MAC over
	// header.payload and compares byte-for-byte.
	Secret []byte

	// DefaultTTL applies when Issue is called with a non-positive ttl.
	DefaultTTL time.Duration

	// Issuer, when set, is stamped into every token and required on verify.
	Issuer string

	// Leeway tolerates small clock skew between issuer and verifier.
	Leeway time.Duration
}

// Claims is the structured payload carried inside a token. Subject and Role
// are the authorization-relevant fields; Extra carries any additional flat
// claims the caller wants embedded. Reserved claim names (sub, role, iss,
// iat, exp) in Extra are ignored on issue.
type Claims struct {
	Subject   string
	Role      string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any
}

// Manager signs and verifies tokens with a single configured secret. Safe
// for concurrent use; it holds no mutable state.
type Manager struct {
	config Config
}

// NewManager validates the config and builds a Manager. A missing secret or
// non-positive DefaultTTL is a construction failure, never a request-time
// one.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrNoSecret
	}
	if cfg.DefaultTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	return &Manager{config: cfg}, nil
}

// Issue signs a token for the given claims. iat is set to the current time
// and exp to now+ttl (DefaultTTL when ttl is non-positive), so exp is always
// strictly greater than iat.
func (m *Manager) Issue(claims Claims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = m.config.DefaultTTL
	}

	now := time.Now()
	payload := jwt.MapClaims{}
	for k, v := range claims.Extra {
		switch k {
		case "sub", "role", "iss", "iat", "exp":
			continue
		}
		payload[k] = v
	}
	payload["sub"] = claims.Subject
	if claims.Role != "" {
		payload["role"] = claims.Role
	}
	if m.config.Issuer != "" {
		payload["iss"] = m.config.Issuer
	}
	payload["iat"] = jwt.NewNumericDate(now)
	payload["exp"] = jwt.NewNumericDate(now.Add(ttl))

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	return tok.SignedString(m.config.Secret)
}

// Verify recomputes the signature over the received header and payload,
// checks expiry, and returns the claims unchanged. Failures map to exactly
// one of [ErrMalformed], [ErrSignatureInvalid], or [ErrExpired].
func (m *Manager) Verify(tokenStr string) (Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{Algorithm}),
		// Strict decoding rejects non-canonical base64 (non-zero slack
		// bits), so every altered signature byte fails verification.
		jwt.WithStrictDecoding(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		return Claims{}, mapVerifyError(tokenStr, err)
	}

	payload, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, jwt.ErrTokenInvalidClaims)
	}
	return claimsFromMap(payload), nil
}

// Decode parses the payload without checking the signature. It is NOT an
// authenticity proof: callers must never gate access decisions on a decoded
// token, only on [Manager.Verify].
func (m *Manager) Decode(tokenStr string) (Claims, error) {
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(tokenStr, jwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	payload, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, jwt.ErrTokenInvalidClaims)
	}
	return claimsFromMap(payload), nil
}

func claimsFromMap(payload jwt.MapClaims) Claims {
	claims := Claims{}
	for k, v := range payload {
		switch k {
		case "sub":
			claims.Subject, _ = v.(string)
		case "role":
			claims.Role, _ = v.(string)
		case "iss":
			claims.Issuer, _ = v.(string)
		case "iat":
			if d, err := payload.GetIssuedAt(); err == nil && d != nil {
				claims.IssuedAt = d.Time
			}
		case "exp":
			if d, err := payload.GetExpirationTime(); err == nil && d != nil {
				claims.ExpiresAt = d.Time
			}
		default:
			if claims.Extra == nil {
				claims.Extra = make(map[string]any)
			}
			claims.Extra[k] = v
		}
	}
	return claims
}

func mapVerifyError(tokenStr string, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		// A token whose header and payload decode but whose signature
		// segment does not is a signature failure, not a structural one.
		if onlySignatureUndecodable(tokenStr) {
			return fmt.Errorf("%w: undecodable signature segment", ErrSignatureInvalid)
		}
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

func onlySignatureUndecodable(tokenStr string) bool {
	enc := base64.RawURLEncoding.Strict()
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return false
	}
	if _, err := enc.DecodeString(parts[0]); err != nil {
		return false
	}
	if _, err := enc.DecodeString(parts[1]); err != nil {
		return false
	}
	_, err := enc.DecodeString(parts[2])
	return err != nil
}
