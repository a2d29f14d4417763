package stores

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestVersionStore(t *testing.T) (*miniredis.Miniredis, *TokenVersionStore) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, NewTokenVersionStore(rdb, "")
}

func TestVersionDefaultsToOne(t *testing.T) {
	_, store := newTestVersionStore(t)

	version, err := store.Get(context.Background(), "fresh-user")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if version != 1 {
		t.Fatalf("expected implicit version 1, got %d", version)
	}
}

func TestBumpAdvancesFromImplicitDefault(t *testing.T) {
	_, store := newTestVersionStore(t)
	ctx := context.Background()

	version, err := store.Bump(ctx, "u1")
	if err != nil {
		t.Fatalf("Bump failed: %v", err)
	}
	if version != 2 {
		t.Fatalf("first bump should land on 2, got %d", version)
	}

	version, err = store.Bump(ctx, "u1")
	if err != nil {
		t.Fatalf("second Bump failed: %v", err)
	}
	if version != 3 {
		t.Fatalf("second bump should land on 3, got %d", version)
	}

	got, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != 3 {
		t.Fatalf("Get should read the bumped value, got %d", got)
	}
}

func TestVersionKeyIsPersistent(t *testing.T) {
	mr, store := newTestVersionStore(t)

	if _, err := store.Bump(context.Background(), "u1"); err != nil {
		t.Fatalf("Bump failed: %v", err)
	}
	if ttl := mr.TTL("auth:token:version:u1"); ttl != 0 {
		t.Fatalf("version key must not expire, got TTL %v", ttl)
	}
}

func TestConcurrentBumpsNeverLoseUpdates(t *testing.T) {
	_, store := newTestVersionStore(t)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Bump(ctx, "u1"); err != nil {
				t.Errorf("Bump failed: %v", err)
			}
		}()
	}
	wg.Wait()

	version, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if version != workers+1 {
		t.Fatalf("expected version %d after %d bumps, got %d", workers+1, workers, version)
	}
}
