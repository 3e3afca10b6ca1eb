package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreTest(t *testing.T, retention time.Duration) (*RedisStore, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb, "as", retention)
	return store, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestRedisStoreAppendAndGet(t *testing.T) {
	store, mr, done := newRedisStoreTest(t, time.Hour)
	defer done()
	ctx := context.Background()

	want := appendSession(t, store, "s-1", "alice", time.Now().UTC().Truncate(time.Millisecond))

	got, err := store.Get(ctx, "s-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.IdentityID != want.IdentityID || got.IP != want.IP || !got.StartedAt.Equal(want.StartedAt) {
		t.Errorf("stored session %+v, want %+v", got, want)
	}

	if ttl := mr.TTL(store.recordKey("s-1")); ttl <= 0 || ttl > time.Hour {
		t.Errorf("record TTL = %v, want within retention", ttl)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisStoreEndKeepsRetention(t *testing.T) {
	store, mr, done := newRedisStoreTest(t, time.Hour)
	defer done()
	ctx := context.Background()

	appendSession(t, store, "s-1", "alice", time.Now().UTC())

	endedAt := time.Now().UTC().Truncate(time.Millisecond)
	if err := store.End(ctx, "s-1", endedAt); err != nil {
		t.Fatalf("end failed: %v", err)
	}

	got, err := store.Get(ctx, "s-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.EndedAt == nil || !got.EndedAt.Equal(endedAt) {
		t.Errorf("EndedAt = %v, want %v", got.EndedAt, endedAt)
	}

	if ttl := mr.TTL(store.recordKey("s-1")); ttl <= 0 {
		t.Errorf("end marker dropped the retention TTL, ttl = %v", ttl)
	}

	// The first end marker wins.
	if err := store.End(ctx, "s-1", endedAt.Add(time.Hour)); err != nil {
		t.Fatalf("second end failed: %v", err)
	}
	again, _ := store.Get(ctx, "s-1")
	if !again.EndedAt.Equal(endedAt) {
		t.Errorf("second End overwrote the marker: %v", again.EndedAt)
	}

	if err := store.End(ctx, "missing", endedAt); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisStoreListByIdentity(t *testing.T) {
	store, _, done := newRedisStoreTest(t, time.Hour)
	defer done()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	appendSession(t, store, "s-2", "alice", base.Add(2*time.Minute))
	appendSession(t, store, "s-1", "alice", base)
	appendSession(t, store, "s-other", "bob", base)

	list, err := store.ListByIdentity(ctx, "alice")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list returned %d sessions, want 2", len(list))
	}
	if list[0].ID != "s-1" || list[1].ID != "s-2" {
		t.Errorf("list order = [%s %s], want start-time order [s-1 s-2]", list[0].ID, list[1].ID)
	}

	empty, err := store.ListByIdentity(ctx, "nobody")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("unknown identity returned %d sessions", len(empty))
	}
}

func TestRedisStoreListDropsExpiredRecords(t *testing.T) {
	store, mr, done := newRedisStoreTest(t, time.Hour)
	defer done()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	appendSession(t, store, "s-1", "alice", base)
	appendSession(t, store, "s-2", "alice", base.Add(time.Minute))

	// Simulate retention expiry of one record while the index still lists it.
	mr.Del(store.recordKey("s-1"))

	list, err := store.ListByIdentity(ctx, "alice")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != "s-2" {
		t.Fatalf("list = %+v, want only s-2", list)
	}

	// The stale index entry is pruned lazily.
	members, err := mr.SMembers(store.identityKey("alice"))
	if err != nil {
		t.Fatalf("smembers: %v", err)
	}
	if len(members) != 1 || members[0] != "s-2" {
		t.Errorf("index members = %v, want [s-2]", members)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr, done := newRedisStoreTest(t, 0)
	defer done()
	ctx := context.Background()

	appendSession(t, store, "s-1", "alice", time.Now().UTC())
	mr.Close()

	if err := store.Append(ctx, Session{ID: "s-2", IdentityID: "alice"}); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := store.Get(ctx, "s-1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if err := store.End(ctx, "s-1", time.Now()); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := store.ListByIdentity(ctx, "alice"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if err := store.Ping(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
