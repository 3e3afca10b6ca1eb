package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	createStatusExists  int64 = 0
	createStatusCreated int64 = 1
)

// createIdentityScript claims the natural-key index and writes the record in
// one atomic step. Without it, two concurrent provisioning calls could both
// pass the lookup and write duplicate records.
const createIdentityScript = `
local record_key = KEYS[1]
local index_key = ARGV[1]
local id = ARGV[2]
local payload = ARGV[3]

if index_key ~= "" then
  local existing = redis.call("GET", index_key)
  if existing then
    return {0, existing}
  end
end

redis.call("SET", record_key, payload)
if index_key ~= "" then
  redis.call("SET", index_key, id)
end
return {1, id}
`

var createIdentityLua = redis.NewScript(createIdentityScript)

// RedisStore is a Redis-backed [Store]. Records live at <prefix>:id:<id> as
// JSON; local identities are indexed at <prefix>:email:<email>, federated
// ones at <prefix>:ext:<provider>:<externalID>.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore creates an identity store backed by the given Redis client.
// prefix sets the key namespace; "ai" is used when empty.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ai"
	}
	return &RedisStore{
		redis:  client,
		prefix: prefix,
	}
}

func (s *RedisStore) recordKey(id string) string {
	return s.prefix + ":id:" + id
}

func (s *RedisStore) emailKey(email string) string {
	return s.prefix + ":email:" + NormalizeEmail(email)
}

func (s *RedisStore) externalKey(provider, externalID string) string {
	return s.prefix + ":ext:" + provider + ":" + externalID
}

// GetByEmail resolves a local identity through the email index.
func (s *RedisStore) GetByEmail(ctx context.Context, email string) (Identity, error) {
	return s.getByIndex(ctx, s.emailKey(email))
}

// GetByExternalID resolves a federated identity through the external index.
func (s *RedisStore) GetByExternalID(ctx context.Context, provider, externalID string) (Identity, error) {
	return s.getByIndex(ctx, s.externalKey(provider, externalID))
}

func (s *RedisStore) getByIndex(ctx context.Context, indexKey string) (Identity, error) {
	id, err := s.redis.Get(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Identity{}, ErrNotFound
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return s.GetByID(ctx, id)
}

// GetByID resolves any identity by its stable id.
func (s *RedisStore) GetByID(ctx context.Context, id string) (Identity, error) {
	data, err := s.redis.Get(ctx, s.recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Identity{}, ErrNotFound
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var ident Identity
	if err := json.Unmarshal(data, &ident); err != nil {
		return Identity{}, fmt.Errorf("%w: corrupt identity record: %v", ErrStoreUnavailable, err)
	}
	return ident, nil
}

// Create persists a new identity. The natural-key index claim and record
// write happen in a single Lua call, so a losing racer observes [ErrExists]
// and can re-read the winner.
func (s *RedisStore) Create(ctx context.Context, ident Identity) (Identity, error) {
	payload, err := json.Marshal(ident)
	if err != nil {
		return Identity{}, err
	}

	indexKey := ""
	if ident.IsLocal() {
		if ident.Email != "" {
			indexKey = s.emailKey(ident.Email)
		}
	} else {
		indexKey = s.externalKey(ident.Provider, ident.ExternalID)
	}

	result, err := createIdentityLua.Run(
		ctx,
		s.redis,
		[]string{s.recordKey(ident.ID)},
		indexKey,
		ident.ID,
		payload,
	).Result()
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	parts, ok := result.([]interface{})
	if !ok || len(parts) == 0 {
		return Identity{}, fmt.Errorf("%w: invalid create script response", ErrStoreUnavailable)
	}

	code, ok := parts[0].(int64)
	if !ok {
		return Identity{}, fmt.Errorf("%w: invalid create script status", ErrStoreUnavailable)
	}

	switch code {
	case createStatusExists:
		return Identity{}, ErrExists
	case createStatusCreated:
		return ident, nil
	default:
		return Identity{}, fmt.Errorf("%w: unknown create script status", ErrStoreUnavailable)
	}
}

// Ping returns a point-in-time Redis availability check.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
