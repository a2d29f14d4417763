package goPortal

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestUpdateProfileFlow(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	up := singleUserProvider("u1")
	engine := newTestEngine(t, rdb, up)

	ticket, err := engine.IssueActionTicket(ctx, "u1", ScopeProfile)
	if err != nil {
		t.Fatalf("IssueActionTicket failed: %v", err)
	}

	name := "New Name"
	phone := "+15550100"
	if err := engine.UpdateProfile(ctx, ticket, ProfileChanges{Name: &name, Phone: &phone}); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	if up.updateProfileCalls != 1 {
		t.Fatalf("expected one UpdateProfile call, got %d", up.updateProfileCalls)
	}
	if up.users["u1"].Name != "New Name" {
		t.Fatalf("expected provider to apply the name change, got %q", up.users["u1"].Name)
	}

	// Profile edits must not kill live sessions.
	version, err := engine.TokenVersion(ctx, "u1")
	if err != nil {
		t.Fatalf("TokenVersion failed: %v", err)
	}
	if version != 1 {
		t.Fatalf("expected token version untouched, got %d", version)
	}

	entries, err := rdb.XRange(ctx, "portal:events", "-", "+").Result()
	if err != nil {
		t.Fatalf("XRange failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one event, got %d", len(entries))
	}
	if entries[0].Values["event_type"] != "USER_PROFILE_UPDATED" {
		t.Fatalf("unexpected event type %v", entries[0].Values["event_type"])
	}

	var payload struct {
		ChangedFields []string `json:"changed_fields"`
	}
	raw, _ := entries[0].Values["payload"].(string)
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("payload decode failed: %v", err)
	}
	if len(payload.ChangedFields) != 2 {
		t.Fatalf("expected two changed fields, got %v", payload.ChangedFields)
	}
}

func TestUpdateProfileRejectsEmptyChangeSet(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	up := singleUserProvider("u1")
	engine := newTestEngine(t, rdb, up)

	ticket, err := engine.IssueActionTicket(ctx, "u1", ScopeProfile)
	if err != nil {
		t.Fatalf("IssueActionTicket failed: %v", err)
	}

	err = engine.UpdateProfile(ctx, ticket, ProfileChanges{})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	// The ticket must survive the rejected call.
	name := "Still Works"
	if err := engine.UpdateProfile(ctx, ticket, ProfileChanges{Name: &name}); err != nil {
		t.Fatalf("UpdateProfile after rejected call failed: %v", err)
	}
}

func TestUpdateProfileTicketIsSingleUse(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	up := singleUserProvider("u1")
	engine := newTestEngine(t, rdb, up)

	ticket, err := engine.IssueActionTicket(ctx, "u1", ScopeProfile)
	if err != nil {
		t.Fatalf("IssueActionTicket failed: %v", err)
	}

	name := "First"
	if err := engine.UpdateProfile(ctx, ticket, ProfileChanges{Name: &name}); err != nil {
		t.Fatalf("first UpdateProfile failed: %v", err)
	}

	second := "Second"
	err = engine.UpdateProfile(ctx, ticket, ProfileChanges{Name: &second})
	if !errors.Is(err, ErrActionTicketReplayed) {
		t.Fatalf("expected ErrActionTicketReplayed, got %v", err)
	}
}
