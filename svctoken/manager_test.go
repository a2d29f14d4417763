package svctoken

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func testManagerConfig() Config {
	return Config{
		Secret: bytes.Repeat([]byte("s"), 32),
		TTL:    5 * time.Minute,
		Issuer: "goportal",
		Leeway: 30 * time.Second,
	}
}

func TestIssueAndVerify(t *testing.T) {
	mgr, err := NewManager(testManagerConfig())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, err := mgr.Issue("crm")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	system, err := mgr.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if system != "crm" {
		t.Fatalf("expected system crm, got %q", system)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	mgr, err := NewManager(testManagerConfig())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	cases := []string{
		"",
		"not-a-jwt",
		"aaaa.bbbb.cccc",
	}
	for _, c := range cases {
		if _, err := mgr.Verify(c); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify(%q): expected ErrInvalidToken, got %v", c, err)
		}
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	mgr, err := NewManager(testManagerConfig())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	foreignCfg := testManagerConfig()
	foreignCfg.Secret = bytes.Repeat([]byte("x"), 32)
	foreign, err := NewManager(foreignCfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, err := foreign.Issue("crm")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := mgr.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	mgr, err := NewManager(testManagerConfig())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	otherCfg := testManagerConfig()
	otherCfg.Issuer = "someone-else"
	other, err := NewManager(otherCfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, err := other.Issue("crm")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := mgr.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong issuer, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	shortCfg := testManagerConfig()
	shortCfg.TTL = time.Millisecond
	shortCfg.Leeway = 0
	mgr, err := NewManager(shortCfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, err := mgr.Issue("crm")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := mgr.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestIssueRejectsEmptySystem(t *testing.T) {
	mgr, err := NewManager(testManagerConfig())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if _, err := mgr.Issue(""); err == nil {
		t.Fatal("empty system code should be rejected")
	}
}

func TestNewManagerValidatesConfig(t *testing.T) {
	mutations := []func(*Config){
		func(c *Config) { c.Secret = []byte("short") },
		func(c *Config) { c.TTL = 0 },
		func(c *Config) { c.Leeway = -time.Second },
		func(c *Config) { c.Leeway = 10 * time.Minute },
	}
	for i, mutate := range mutations {
		cfg := testManagerConfig()
		mutate(&cfg)
		if _, err := NewManager(cfg); !errors.Is(err, ErrMisconfigured) {
			t.Fatalf("mutation %d: expected ErrMisconfigured, got %v", i, err)
		}
	}
}
