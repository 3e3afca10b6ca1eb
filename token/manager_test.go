package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("unit-test-secret-key-0123456789ab")

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		Secret:     testSecret,
		DefaultTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestNewManagerConfigRules(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want error
	}{
		{"missing secret", Config{DefaultTTL: time.Hour}, ErrNoSecret},
		{"zero ttl", Config{Secret: testSecret}, nil},
		{"negative leeway", Config{Secret: testSecret, DefaultTTL: time.Hour, Leeway: -time.Second}, nil},
		{"excessive leeway", Config{Secret: testSecret, DefaultTTL: time.Hour, Leeway: time.Hour}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewManager(tc.cfg)
			if err == nil {
				t.Fatal("expected construction to fail")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := NewManager(Config{Secret: testSecret, DefaultTTL: time.Minute, Leeway: 30 * time.Second}); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := newTestManager(t)

	in := Claims{
		Subject: "id-123",
		Role:    "viewer",
		Extra:   map[string]any{"device": "cli", "scopes": "read"},
	}

	tok, err := m.Issue(in, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if parts := strings.Split(tok, "."); len(parts) != 3 {
		t.Fatalf("expected three-segment compact form, got %d segments", len(parts))
	}

	out, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if out.Subject != in.Subject || out.Role != in.Role {
		t.Fatalf("claims changed in transit: %+v", out)
	}
	if out.Extra["device"] != "cli" || out.Extra["scopes"] != "read" {
		t.Fatalf("custom claims changed in transit: %+v", out.Extra)
	}
	if !out.ExpiresAt.After(out.IssuedAt) {
		t.Fatalf("expected exp > iat, got iat=%v exp=%v", out.IssuedAt, out.ExpiresAt)
	}
}

func TestIssueReservedExtraKeysIgnored(t *testing.T) {
	m := newTestManager(t)

	tok, err := m.Issue(Claims{
		Subject: "id-123",
		Role:    "viewer",
		Extra:   map[string]any{"sub": "forged", "exp": 1, "role": "admin"},
	}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	out, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if out.Subject != "id-123" || out.Role != "viewer" {
		t.Fatalf("reserved keys overridden: %+v", out)
	}
}

func TestVerifyExpired(t *testing.T) {
	m := newTestManager(t)

	payload := gjwt.MapClaims{
		"sub":  "id-123",
		"role": "viewer",
		"iat":  gjwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		"exp":  gjwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	tok, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, payload).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.Verify(tok); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyExpiredWithinLeeway(t *testing.T) {
	m, err := NewManager(Config{Secret: testSecret, DefaultTTL: time.Hour, Leeway: 30 * time.Second})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	payload := gjwt.MapClaims{
		"sub": "id-123",
		"iat": gjwt.NewNumericDate(time.Now().Add(-time.Hour)),
		"exp": gjwt.NewNumericDate(time.Now().Add(-10 * time.Second)),
	}
	tok, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, payload).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.Verify(tok); err != nil {
		t.Fatalf("expected token within leeway to verify: %v", err)
	}
}

// Flipping any bit of the signature segment must surface as a signature
// failure. A flip that turns a byte into the segment separator changes the
// token structure itself and is skipped.
func TestVerifySignatureBitFlips(t *testing.T) {
	m := newTestManager(t)

	payloads := []Claims{
		{Subject: "id-1", Role: "viewer"},
		{Subject: "id-2", Role: "admin", Extra: map[string]any{"k": "v"}},
		{Subject: "id-3"},
	}

	for _, claims := range payloads {
		tok, err := m.Issue(claims, time.Hour)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		lastDot := strings.LastIndex(tok, ".")
		raw := []byte(tok)
		for i := lastDot + 1; i < len(raw); i++ {
			for bit := 0; bit < 8; bit++ {
				flipped := make([]byte, len(raw))
				copy(flipped, raw)
				flipped[i] ^= 1 << bit
				if flipped[i] == '.' {
					continue
				}

				_, err := m.Verify(string(flipped))
				if !errors.Is(err, ErrSignatureInvalid) {
					t.Fatalf("byte %d bit %d: expected ErrSignatureInvalid, got %v", i-lastDot-1, bit, err)
				}
			}
		}
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	m := newTestManager(t)

	other, err := NewManager(Config{Secret: []byte("a-different-secret-0123456789abcd"), DefaultTTL: time.Hour})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	tok, err := other.Issue(Claims{Subject: "id-1"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.Verify(tok); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	m := newTestManager(t)

	cases := []string{
		"",
		"not-a-token",
		"one.two",
		"a.b.c.d",
		"!!!.???.___",
	}
	for _, tok := range cases {
		if _, err := m.Verify(tok); !errors.Is(err, ErrMalformed) {
			t.Fatalf("%q: expected ErrMalformed, got %v", tok, err)
		}
	}
}

func TestVerifyRejectsWrongAlgorithm(t *testing.T) {
	m := newTestManager(t)

	payload := gjwt.MapClaims{
		"sub": "id-1",
		"exp": gjwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok, err := gjwt.NewWithClaims(gjwt.SigningMethodHS384, payload).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.Verify(tok); err == nil {
		t.Fatal("expected wrong algorithm to be rejected")
	}
}

func TestVerifyIssuer(t *testing.T) {
	m, err := NewManager(Config{Secret: testSecret, DefaultTTL: time.Hour, Issuer: "authcore"})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	tok, err := m.Issue(Claims{Subject: "id-1"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	out, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if out.Issuer != "authcore" {
		t.Fatalf("expected stamped issuer, got %q", out.Issuer)
	}

	foreign := gjwt.MapClaims{
		"sub": "id-1",
		"iss": "someone-else",
		"exp": gjwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	foreignTok, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, foreign).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Verify(foreignTok); err == nil {
		t.Fatal("expected wrong issuer to fail")
	}
}

// Decode must return claims even when the signature is garbage, and the
// same token must fail Verify. This is the documented non-proof property.
func TestDecodeIgnoresSignature(t *testing.T) {
	m := newTestManager(t)

	tok, err := m.Issue(Claims{Subject: "id-1", Role: "viewer"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tampered := tok[:strings.LastIndex(tok, ".")+1] + "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

	if _, err := m.Verify(tampered); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected tampered token to fail verify, got %v", err)
	}

	out, err := m.Decode(tampered)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Subject != "id-1" || out.Role != "viewer" {
		t.Fatalf("decode lost claims: %+v", out)
	}
}

func TestIssueDefaultTTL(t *testing.T) {
	m, err := NewManager(Config{Secret: testSecret, DefaultTTL: 42 * time.Minute})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	tok, err := m.Issue(Claims{Subject: "id-1"}, 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	out, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	got := out.ExpiresAt.Sub(out.IssuedAt)
	if got != 42*time.Minute {
		t.Fatalf("expected default ttl 42m, got %v", got)
	}
}
