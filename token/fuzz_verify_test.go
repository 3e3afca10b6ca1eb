package token

import (
	"testing"
	"time"
)

// FuzzVerify exercises the token parser with arbitrary strings.
// Goal: no panics; invalid inputs must be rejected with errors.
func FuzzVerify(f *testing.F) {
	mgr, err := NewManager(Config{
		Secret:     []byte("fuzz-secret-key-0123456789abcdef"),
		DefaultTTL: 5 * time.Minute,
		Issuer:     "fuzz-test",
		Leeway:     30 * time.Second,
	})
	if err != nil {
		f.Fatal(err)
	}

	valid, err := mgr.Issue(Claims{Subject: "id-1", Role: "viewer"}, time.Minute)
	if err != nil {
		f.Fatal(err)
	}

	f.Add(valid)
	f.Add("")
	f.Add("not.a.jwt")
	f.Add("eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ0ZXN0In0.invalid")
	f.Add("eyJhbGciOiJub25lIn0.eyJzdWIiOiJ0ZXN0In0.")

	f.Fuzz(func(t *testing.T, input string) {
		claims, err := mgr.Verify(input)
		if err != nil {
			return
		}
		if claims.Subject == "" && claims.Role == "" && claims.Extra == nil {
			t.Fatal("Verify returned empty claims without error")
		}
	})
}
