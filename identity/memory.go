package identity

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory [Store] for tests, examples, and single-node
// development. All methods are safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]Identity
	byEmail map[string]string // normalized email -> id, local identities only
	byExt   map[string]string // provider + "\x00" + external id -> id
}

// NewMemoryStore creates an empty in-memory identity store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]Identity),
		byEmail: make(map[string]string),
		byExt:   make(map[string]string),
	}
}

func extKey(provider, externalID string) string {
	return provider + "\x00" + externalID
}

// GetByEmail resolves a local identity by normalized email.
func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return Identity{}, ErrNotFound
	}
	return s.byID[id], nil
}

// GetByExternalID resolves a federated identity by (provider, external id).
func (s *MemoryStore) GetByExternalID(ctx context.Context, provider, externalID string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byExt[extKey(provider, externalID)]
	if !ok {
		return Identity{}, ErrNotFound
	}
	return s.byID[id], nil
}

// GetByID resolves any identity by its stable id.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ident, ok := s.byID[id]
	if !ok {
		return Identity{}, ErrNotFound
	}
	return ident, nil
}

// Create persists a new identity, enforcing the natural-key uniqueness
// contract. The whole check-and-insert runs under one lock, so concurrent
// provisioning of the same external account yields exactly one record.
func (s *MemoryStore) Create(ctx context.Context, ident Identity) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[ident.ID]; ok {
		return Identity{}, ErrExists
	}

	email := NormalizeEmail(ident.Email)
	if ident.IsLocal() {
		if email != "" {
			if _, ok := s.byEmail[email]; ok {
				return Identity{}, ErrExists
			}
		}
	} else {
		if _, ok := s.byExt[extKey(ident.Provider, ident.ExternalID)]; ok {
			return Identity{}, ErrExists
		}
	}

	s.byID[ident.ID] = ident
	if ident.IsLocal() {
		if email != "" {
			s.byEmail[email] = ident.ID
		}
	} else {
		s.byExt[extKey(ident.Provider, ident.ExternalID)] = ident.ID
	}

	return ident, nil
}

// Len reports the number of stored identities. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
