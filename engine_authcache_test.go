package goPortal

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAuthorizationSnapshotCachesOnFirstRead(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	up := singleUserProvider("u1")
	engine := newTestEngine(t, rdb, up)

	snapshot, err := engine.AuthorizationSnapshot(ctx, "u1")
	if err != nil {
		t.Fatalf("AuthorizationSnapshot failed: %v", err)
	}
	if snapshot.UserID != "u1" || snapshot.Status != AccountActive {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}
	if len(snapshot.Systems) != 2 {
		t.Fatalf("expected two systems, got %v", snapshot.Systems)
	}

	if !mr.Exists("user:auth:u1") {
		t.Fatal("expected cached snapshot under the user:auth namespace")
	}
	ttl := mr.TTL("user:auth:u1")
	if ttl <= 0 || ttl > 10*time.Minute {
		t.Fatalf("unexpected snapshot TTL %v", ttl)
	}

	// The second read is served from the cache, not the provider.
	if _, err := engine.AuthorizationSnapshot(ctx, "u1"); err != nil {
		t.Fatalf("second AuthorizationSnapshot failed: %v", err)
	}
	if up.getByIDCalls != 1 {
		t.Fatalf("expected one provider lookup, got %d", up.getByIDCalls)
	}
}

func TestAuthorizationSnapshotInvalidatedByForceLogout(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	up := singleUserProvider("u1")
	engine := newTestEngine(t, rdb, up)

	if _, err := engine.AuthorizationSnapshot(ctx, "u1"); err != nil {
		t.Fatalf("AuthorizationSnapshot failed: %v", err)
	}
	if !mr.Exists("user:auth:u1") {
		t.Fatal("expected cached snapshot")
	}

	if err := engine.ForceLogout(ctx, "u1"); err != nil {
		t.Fatalf("ForceLogout failed: %v", err)
	}

	if mr.Exists("user:auth:u1") {
		t.Fatal("expected snapshot to be dropped by force logout")
	}
}

func TestAuthorizationSnapshotUnknownUser(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine := newTestEngine(t, rdb, singleUserProvider("u1"))

	_, err := engine.AuthorizationSnapshot(ctx, "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestInvalidateAuthorizationIsIdempotent(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine := newTestEngine(t, rdb, singleUserProvider("u1"))

	if err := engine.InvalidateAuthorization(ctx, "u1"); err != nil {
		t.Fatalf("InvalidateAuthorization on empty cache failed: %v", err)
	}

	if _, err := engine.AuthorizationSnapshot(ctx, "u1"); err != nil {
		t.Fatalf("AuthorizationSnapshot failed: %v", err)
	}
	if err := engine.InvalidateAuthorization(ctx, "u1"); err != nil {
		t.Fatalf("InvalidateAuthorization failed: %v", err)
	}
	if mr.Exists("user:auth:u1") {
		t.Fatal("expected snapshot to be removed")
	}
}
