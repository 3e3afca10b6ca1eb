package provider

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/holasoymalva/authcore/identity"
)

type taggedVerifier struct{ tag string }

func (v taggedVerifier) Tag() string { return v.tag }
func (v taggedVerifier) Verify(ctx context.Context, cred Credential) (identity.Identity, error) {
	return identity.Identity{}, ErrInvalidCredential
}

func TestRegistryGet(t *testing.T) {
	r, err := NewRegistry(taggedVerifier{"local"}, taggedVerifier{"github"})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	for _, tag := range []string{"local", "github"} {
		v, err := r.Get(tag)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", tag, err)
		}
		if v.Tag() != tag {
			t.Errorf("Get(%q) returned verifier tagged %q", tag, v.Tag())
		}
	}

	_, err = r.Get("gitlab")
	if !errors.Is(err, ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
	if !strings.Contains(err.Error(), "gitlab") {
		t.Errorf("error should name the unknown tag, got %q", err)
	}
}

func TestRegistryRejectsBadTags(t *testing.T) {
	if _, err := NewRegistry(taggedVerifier{"local"}, taggedVerifier{"local"}); err == nil {
		t.Fatal("NewRegistry accepted a duplicate tag")
	}
	if _, err := NewRegistry(taggedVerifier{""}); err == nil {
		t.Fatal("NewRegistry accepted an empty tag")
	}
}

func TestRegistryTags(t *testing.T) {
	r, err := NewRegistry(taggedVerifier{"oidc"}, taggedVerifier{"local"}, taggedVerifier{"github"})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	tags := r.Tags()
	want := []string{"github", "local", "oidc"}
	if len(tags) != len(want) {
		t.Fatalf("Tags() = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("Tags() = %v, want %v", tags, want)
		}
	}
	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
}
