package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "as"

// RedisStore persists the session journal in Redis. Records are stored as
// JSON under per-session keys with an optional retention TTL; a per-identity
// set indexes an identity's session IDs.
type RedisStore struct {
	redis     redis.UniversalClient
	prefix    string
	retention time.Duration
}

// NewRedisStore creates a journal store on the given Redis client. prefix
// sets the key namespace (default "as"); retention bounds how long records
// are kept, zero meaning forever.
func NewRedisStore(client redis.UniversalClient, prefix string, retention time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisStore{redis: client, prefix: prefix, retention: retention}
}

func (s *RedisStore) recordKey(sessionID string) string {
	return s.prefix + ":sess:" + sessionID
}

func (s *RedisStore) identityKey(identityID string) string {
	return s.prefix + ":idx:" + identityID
}

// Append implements Store.
func (s *RedisStore) Append(ctx context.Context, sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	recordKey := s.recordKey(sess.ID)
	identityKey := s.identityKey(sess.IdentityID)

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, recordKey, data, s.retention)
		pipe.SAdd(ctx, identityKey, sess.ID)
		if s.retention > 0 {
			// Index lives as long as the newest record under it.
			pipe.Expire(ctx, identityKey, s.retention)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// End implements Store.
//
// ATOMICITY NOTE: the end marker is written read-modify-write, not under a
// lock. Records receive no other mutation after Append, so the only race is
// two concurrent Ends of the same session, which both land the marker with
// marginally different timestamps. That is acceptable for a journal.
func (s *RedisStore) End(ctx context.Context, sessionID string, at time.Time) error {
	recordKey := s.recordKey(sessionID)

	data, err := s.redis.Get(ctx, recordKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return fmt.Errorf("decode session %s: %v", sessionID, err)
	}
	if sess.EndedAt != nil {
		return nil
	}

	ended := at
	sess.EndedAt = &ended
	updated, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, recordKey, updated, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (Session, error) {
	data, err := s.redis.Get(ctx, s.recordKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("decode session %s: %v", sessionID, err)
	}
	return sess, nil
}

// ListByIdentity implements Store.
func (s *RedisStore) ListByIdentity(ctx context.Context, identityID string) ([]Session, error) {
	identityKey := s.identityKey(identityID)

	ids, err := s.redis.SMembers(ctx, identityKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := s.redis.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, s.recordKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	out := make([]Session, 0, len(ids))
	var expired []interface{}
	for i, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				expired = append(expired, ids[i])
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			return nil, fmt.Errorf("decode session %s: %v", ids[i], err)
		}
		out = append(out, sess)
	}

	if len(expired) > 0 {
		// Records past retention drop out of the index lazily.
		_ = s.redis.SRem(ctx, identityKey, expired...).Err()
	}

	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
