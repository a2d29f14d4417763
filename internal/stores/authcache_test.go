package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestAuthCache(t *testing.T) (*miniredis.Miniredis, *AuthCacheStore) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, NewAuthCacheStore(rdb, "")
}

func sampleSnapshot() *AuthSnapshotRecord {
	return &AuthSnapshotRecord{
		UserID:         "u1",
		Status:         1,
		Systems:        []string{"portal", "crm"},
		AuthVersion:    4,
		ProfileVersion: 2,
	}
}

func TestAuthSnapshotRoundTrip(t *testing.T) {
	in := sampleSnapshot()

	data, err := encodeAuthSnapshotRecord(in)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	out, err := decodeAuthSnapshotRecord(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out.UserID != in.UserID || out.Status != in.Status ||
		out.AuthVersion != in.AuthVersion || out.ProfileVersion != in.ProfileVersion {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
	if len(out.Systems) != 2 || out.Systems[0] != "portal" || out.Systems[1] != "crm" {
		t.Fatalf("system list mismatch: %v", out.Systems)
	}
}

func TestAuthSnapshotDecodeRejectsGarbage(t *testing.T) {
	cases := [][]byte{nil, {}, {0x00}, {0xFF, 0x01}, {0x01, 0x01, 0x00}}
	for _, data := range cases {
		if _, err := decodeAuthSnapshotRecord(data); err == nil {
			t.Fatalf("decode(%v) should have failed", data)
		}
	}
}

func TestAuthCacheSaveGetInvalidate(t *testing.T) {
	mr, store := newTestAuthCache(t)
	ctx := context.Background()

	if err := store.Save(ctx, sampleSnapshot(), 10*time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if ttl := mr.TTL("user:auth:u1"); ttl <= 0 || ttl > 10*time.Minute {
		t.Fatalf("unexpected TTL %v", ttl)
	}

	got, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.AuthVersion != 4 || got.ProfileVersion != 2 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}

	if err := store.Invalidate(ctx, "u1"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if _, err := store.Get(ctx, "u1"); !errors.Is(err, ErrAuthSnapshotNotFound) {
		t.Fatalf("expected ErrAuthSnapshotNotFound after invalidate, got %v", err)
	}

	// Invalidating the already-absent snapshot is a no-op.
	if err := store.Invalidate(ctx, "u1"); err != nil {
		t.Fatalf("second Invalidate failed: %v", err)
	}
}

func TestAuthCacheGetMissing(t *testing.T) {
	_, store := newTestAuthCache(t)

	if _, err := store.Get(context.Background(), "never-cached"); !errors.Is(err, ErrAuthSnapshotNotFound) {
		t.Fatalf("expected ErrAuthSnapshotNotFound, got %v", err)
	}
}

func TestAuthCacheEntryExpires(t *testing.T) {
	mr, store := newTestAuthCache(t)
	ctx := context.Background()

	if err := store.Save(ctx, sampleSnapshot(), time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, "u1"); !errors.Is(err, ErrAuthSnapshotNotFound) {
		t.Fatalf("expected ErrAuthSnapshotNotFound after expiry, got %v", err)
	}
}
