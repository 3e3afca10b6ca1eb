package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func localIdentity(id, email string) Identity {
	return Identity{
		ID:           id,
		DisplayName:  "Test User",
		Email:        email,
		Role:         "viewer",
		Provider:     ProviderLocal,
		PasswordHash: "$argon2id$stub",
		CreatedAt:    time.Now(),
	}
}

func federatedIdentity(id, provider, externalID string) Identity {
	return Identity{
		ID:         id,
		Email:      externalID + "@example.com",
		Role:       "viewer",
		Provider:   provider,
		ExternalID: externalID,
		CreatedAt:  time.Now(),
	}
}

func TestMemoryStoreLookupByEmail(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	seeded := localIdentity("id-1", "Alice@Example.COM")
	if _, err := store.Create(ctx, seeded); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != "id-1" {
		t.Fatalf("expected id-1, got %q", got.ID)
	}
	if got.PasswordHash == "" {
		t.Fatal("expected stored record to retain the password hash")
	}

	if _, err := store.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreExternalKeyUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := federatedIdentity("id-1", "github", "ext-42")
	if _, err := store.Create(ctx, first); err != nil {
		t.Fatalf("create first: %v", err)
	}

	dup := federatedIdentity("id-2", "github", "ext-42")
	if _, err := store.Create(ctx, dup); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists for duplicate external key, got %v", err)
	}

	// Same external id under a different provider is a different account.
	other := federatedIdentity("id-3", "gitlab", "ext-42")
	if _, err := store.Create(ctx, other); err != nil {
		t.Fatalf("create under other provider: %v", err)
	}

	got, err := store.GetByExternalID(ctx, "github", "ext-42")
	if err != nil {
		t.Fatalf("get by external id: %v", err)
	}
	if got.ID != "id-1" {
		t.Fatalf("expected winner id-1, got %q", got.ID)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 identities, got %d", store.Len())
	}
}

func TestMemoryStoreConcurrentCreateSingleWinner(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	const racers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ident := federatedIdentity(fmt.Sprintf("id-%d", n), "github", "ext-race")
			if _, err := store.Create(ctx, ident); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			} else if !errors.Is(err, ErrExists) {
				t.Errorf("unexpected create error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if created != 1 {
		t.Fatalf("expected exactly one winning create, got %d", created)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one stored identity, got %d", store.Len())
	}
}

func TestMemoryStoreContextCancelled(t *testing.T) {
	store := NewMemoryStore()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.GetByEmail(ctx, "a@b.com"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := store.Create(ctx, localIdentity("id-1", "a@b.com")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPublicStripsSecretFields(t *testing.T) {
	ident := localIdentity("id-1", "a@b.com")
	pub := ident.Public()

	if pub.ID != ident.ID || pub.Email != ident.Email || pub.Role != ident.Role {
		t.Fatalf("public view lost non-secret fields: %+v", pub)
	}
}
