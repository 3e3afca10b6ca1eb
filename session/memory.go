package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps the session journal in process memory. Intended for
// tests and single-process embedding; records are held until the process
// exits.
type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[string]Session
	byIdentity map[string][]string
}

// NewMemoryStore returns an empty in-memory journal.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]Session),
		byIdentity: make(map[string][]string),
	}
}

// Append implements Store.
func (s *MemoryStore) Append(ctx context.Context, sess Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[sess.ID]; !exists {
		s.byIdentity[sess.IdentityID] = append(s.byIdentity[sess.IdentityID], sess.ID)
	}
	s.byID[sess.ID] = sess
	return nil
}

// End implements Store.
func (s *MemoryStore) End(ctx context.Context, sessionID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[sessionID]
	if !ok {
		return ErrNotFound
	}
	if sess.EndedAt != nil {
		return nil
	}

	ended := at
	sess.EndedAt = &ended
	s.byID[sessionID] = sess
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.byID[sessionID]
	if !ok {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

// ListByIdentity implements Store.
func (s *MemoryStore) ListByIdentity(ctx context.Context, identityID string) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byIdentity[identityID]
	out := make([]Session, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.byID[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

// Len reports the number of recorded sessions. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
