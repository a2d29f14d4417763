package goPortal

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIssueAndExchangeSsoTicket(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine := newTestEngine(t, rdb, singleUserProvider("u1"))

	ticket, err := engine.IssueSsoTicket(ctx, "u1", "portal", "https://a.example/cb")
	if err != nil {
		t.Fatalf("IssueSsoTicket failed: %v", err)
	}

	if !mr.Exists("sso:ticket:" + ticket) {
		t.Fatal("expected ticket under the sso namespace")
	}
	ttl := mr.TTL("sso:ticket:" + ticket)
	if ttl <= 0 || ttl > 60*time.Second {
		t.Fatalf("unexpected ticket TTL %v", ttl)
	}

	userID, err := engine.ExchangeSsoTicket(ctx, ticket, "portal", "https://a.example/cb")
	if err != nil {
		t.Fatalf("ExchangeSsoTicket failed: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("expected u1, got %q", userID)
	}
}

func TestExchangeSsoTicketSecondAttemptIsStateMismatch(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine := newTestEngine(t, rdb, singleUserProvider("u1"))

	ticket, err := engine.IssueSsoTicket(ctx, "u1", "portal", "https://a.example/cb")
	if err != nil {
		t.Fatalf("IssueSsoTicket failed: %v", err)
	}

	if _, err := engine.ExchangeSsoTicket(ctx, ticket, "portal", "https://a.example/cb"); err != nil {
		t.Fatalf("first exchange failed: %v", err)
	}

	// The consumed record is tombstoned, not deleted, so the second attempt
	// reads as an exchanged ticket rather than a garbage id.
	_, err = engine.ExchangeSsoTicket(ctx, ticket, "portal", "https://a.example/cb")
	if !errors.Is(err, ErrSsoTicketStateMismatch) {
		t.Fatalf("expected ErrSsoTicketStateMismatch, got %v", err)
	}
}

func TestExchangeSsoTicketSystemMismatchLeavesTicketAlive(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine := newTestEngine(t, rdb, singleUserProvider("u1"))

	ticket, err := engine.IssueSsoTicket(ctx, "u1", "crm", "https://crm.example/cb")
	if err != nil {
		t.Fatalf("IssueSsoTicket failed: %v", err)
	}

	_, err = engine.ExchangeSsoTicket(ctx, ticket, "billing", "https://crm.example/cb")
	if !errors.Is(err, ErrSsoTicketClientMismatch) {
		t.Fatalf("expected ErrSsoTicketClientMismatch, got %v", err)
	}

	// The legitimate system can still redeem after a mismatch attempt.
	userID, err := engine.ExchangeSsoTicket(ctx, ticket, "crm", "https://crm.example/cb")
	if err != nil {
		t.Fatalf("legitimate exchange failed: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("expected u1, got %q", userID)
	}
}

func TestExchangeSsoTicketRedirectMismatch(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine := newTestEngine(t, rdb, singleUserProvider("u1"))

	ticket, err := engine.IssueSsoTicket(ctx, "u1", "portal", "https://a.example/cb")
	if err != nil {
		t.Fatalf("IssueSsoTicket failed: %v", err)
	}

	_, err = engine.ExchangeSsoTicket(ctx, ticket, "portal", "https://evil.example/cb")
	if !errors.Is(err, ErrSsoTicketRedirectUriMismatch) {
		t.Fatalf("expected ErrSsoTicketRedirectUriMismatch, got %v", err)
	}
}

func TestExchangeSsoTicketAcceptsEquivalentRedirect(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine := newTestEngine(t, rdb, singleUserProvider("u1"))

	ticket, err := engine.IssueSsoTicket(ctx, "u1", "portal", "HTTPS://A.Example/cb")
	if err != nil {
		t.Fatalf("IssueSsoTicket failed: %v", err)
	}

	// Scheme and host compare case-insensitively after canonicalization.
	userID, err := engine.ExchangeSsoTicket(ctx, ticket, "portal", "https://a.example/cb")
	if err != nil {
		t.Fatalf("exchange with equivalent redirect failed: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("expected u1, got %q", userID)
	}
}

func TestExchangeSsoTicketUnknownID(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine := newTestEngine(t, rdb, singleUserProvider("u1"))

	_, err := engine.ExchangeSsoTicket(ctx, "no-such-ticket", "portal", "https://a.example/cb")
	if !errors.Is(err, ErrSsoTicketInvalid) {
		t.Fatalf("expected ErrSsoTicketInvalid, got %v", err)
	}
}

func TestExchangeSsoTicketExpiredByTTL(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine := newTestEngine(t, rdb, singleUserProvider("u1"))

	ticket, err := engine.IssueSsoTicket(ctx, "u1", "portal", "https://a.example/cb")
	if err != nil {
		t.Fatalf("IssueSsoTicket failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	_, err = engine.ExchangeSsoTicket(ctx, ticket, "portal", "https://a.example/cb")
	if !errors.Is(err, ErrSsoTicketInvalid) {
		t.Fatalf("expected ErrSsoTicketInvalid, got %v", err)
	}
}

func TestIssueSsoTicketRateLimited(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	cfg := newTestConfig()
	cfg.SsoTicket.MaxIssuePerWindow = 3
	engine := newTestEngineWithConfig(t, rdb, singleUserProvider("u1"), cfg)

	for i := 0; i < 3; i++ {
		if _, err := engine.IssueSsoTicket(ctx, "u1", "portal", "https://a.example/cb"); err != nil {
			t.Fatalf("issue %d failed: %v", i, err)
		}
	}

	_, err := engine.IssueSsoTicket(ctx, "u1", "portal", "https://a.example/cb")
	if !errors.Is(err, ErrSsoTicketRateLimited) {
		t.Fatalf("expected ErrSsoTicketRateLimited, got %v", err)
	}

	// Another user is unaffected by u1's window.
	if _, err := engine.IssueSsoTicket(ctx, "u2", "portal", "https://a.example/cb"); err != nil {
		t.Fatalf("issue for u2 failed: %v", err)
	}
}

func TestIssueSsoTicketRejectsUnparsableRedirect(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine := newTestEngine(t, rdb, singleUserProvider("u1"))

	for _, uri := range []string{"", "not-a-uri", "/relative/path", "://missing-scheme"} {
		if _, err := engine.IssueSsoTicket(ctx, "u1", "portal", uri); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument for %q, got %v", uri, err)
		}
	}
}

func TestExchangeForPortalToken(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	up := singleUserProvider("u1")
	engine := newTestEngine(t, rdb, up)

	ticket, err := engine.IssueSsoTicket(ctx, "u1", "crm", "https://crm.example/cb")
	if err != nil {
		t.Fatalf("IssueSsoTicket failed: %v", err)
	}

	result, err := engine.ExchangeForPortalToken(ctx, ticket, "crm", "https://crm.example/cb")
	if err != nil {
		t.Fatalf("ExchangeForPortalToken failed: %v", err)
	}
	if result.UserID != "u1" {
		t.Fatalf("expected u1, got %q", result.UserID)
	}
	if result.Token == "" {
		t.Fatal("expected a portal token")
	}

	identity, err := engine.ValidatePortalToken(ctx, result.Token, "crm")
	if err != nil {
		t.Fatalf("ValidatePortalToken failed: %v", err)
	}
	if identity.UserID != "u1" {
		t.Fatalf("expected u1, got %q", identity.UserID)
	}
}

func TestExchangeForPortalTokenDisabledUser(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	up := singleUserProvider("u1")
	user := up.users["u1"]
	user.Status = AccountDisabled
	up.users["u1"] = user
	engine := newTestEngine(t, rdb, up)

	ticket, err := engine.IssueSsoTicket(ctx, "u1", "crm", "https://crm.example/cb")
	if err != nil {
		t.Fatalf("IssueSsoTicket failed: %v", err)
	}

	_, err = engine.ExchangeForPortalToken(ctx, ticket, "crm", "https://crm.example/cb")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
