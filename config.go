package goPortal

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by goPortal APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	ActionTicket ActionTicketConfig
	SsoTicket    SsoTicketConfig
	PortalToken  PortalTokenConfig
	TokenVersion TokenVersionConfig
	AuthCache    AuthCacheConfig
	Crypto       CryptoConfig
	Password     PasswordConfig
	Events       EventsConfig
	ServiceToken ServiceTokenConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
ACTION TICKET CONFIG
====================================
*/

// ActionTicketConfig defines a public type used by goPortal APIs.
//
// ActionTicketConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ActionTicketConfig struct {
	TTL               time.Duration
	TombstoneTTL      time.Duration
	PasswordKeyPrefix string
	ProfileKeyPrefix  string
}

/*
====================================
SSO TICKET CONFIG
====================================
*/

// SsoTicketConfig defines a public type used by goPortal APIs.
//
// SsoTicketConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SsoTicketConfig struct {
	TTL          time.Duration
	TombstoneTTL time.Duration
	KeyPrefix    string

	// Issuance flood control, fixed window per user.
	EnableIssueThrottle bool
	MaxIssuePerWindow   int
	IssueWindow         time.Duration
}

/*
====================================
PORTAL TOKEN CONFIG
====================================
*/

// PortalTokenConfig defines a public type used by goPortal APIs.
//
// PortalTokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PortalTokenConfig struct {
	TTL                     time.Duration
	SlidingExpiration       bool
	AbsoluteSessionLifetime time.Duration
	KeyPrefix               string
}

/*
====================================
TOKEN VERSION CONFIG
====================================
*/

// TokenVersionConfig defines a public type used by goPortal APIs.
//
// TokenVersionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenVersionConfig struct {
	KeyPrefix string
}

/*
====================================
AUTH CACHE CONFIG
====================================
*/

// AuthCacheConfig defines a public type used by goPortal APIs.
//
// AuthCacheConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuthCacheConfig struct {
	Enabled   bool
	TTL       time.Duration
	KeyPrefix string
}

/*
====================================
CRYPTO CONFIG
====================================
*/

// CryptoConfig controls transport decryption of client-submitted passwords.
// When disabled, submitted passwords are treated as plaintext (back-compat).
type CryptoConfig struct {
	Enabled bool
	Secret  string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by goPortal APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	MinLength   int
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
EVENTS CONFIG
====================================
*/

// EventsConfig defines a public type used by goPortal APIs.
//
// EventsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EventsConfig struct {
	Stream         string
	MaxStreamLen   int64
	DedupKeyPrefix string

	// DedupTTL must outlive the stream's retention window, otherwise a late
	// redelivery would be processed twice.
	DedupTTL time.Duration
}

/*
====================================
SERVICE TOKEN CONFIG
====================================
*/

// ServiceTokenConfig configures the HS256 tokens gating internal
// service-to-service surfaces such as forced logout.
type ServiceTokenConfig struct {
	Enabled bool
	Secret  []byte
	TTL     time.Duration
	Issuer  string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by goPortal APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goPortal APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		ActionTicket: ActionTicketConfig{
			TTL:               5 * time.Minute,
			TombstoneTTL:      10 * time.Minute,
			PasswordKeyPrefix: "portal:action:ticket:pwd:",
			ProfileKeyPrefix:  "portal:action:ticket:profile:",
		},
		SsoTicket: SsoTicketConfig{
			TTL:                 60 * time.Second,
			TombstoneTTL:        5 * time.Minute,
			KeyPrefix:           "sso:ticket:",
			EnableIssueThrottle: true,
			MaxIssuePerWindow:   10,
			IssueWindow:         time.Minute,
		},
		PortalToken: PortalTokenConfig{
			TTL:                     10 * time.Minute,
			SlidingExpiration:       true,
			AbsoluteSessionLifetime: 12 * time.Hour,
			KeyPrefix:               "portal:ptk:",
		},
		TokenVersion: TokenVersionConfig{
			KeyPrefix: "auth:token:version:",
		},
		AuthCache: AuthCacheConfig{
			Enabled:   true,
			TTL:       10 * time.Minute,
			KeyPrefix: "user:auth:",
		},
		Crypto: CryptoConfig{
			Enabled: false,
		},
		Password: PasswordConfig{
			MinLength:   10,
			Memory:      64 * 1024,
			Time:        2,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Events: EventsConfig{
			Stream:         "portal:events",
			MaxStreamLen:   100_000,
			DedupKeyPrefix: "event:dedup:",
			DedupTTL:       7 * 24 * time.Hour,
		},
		ServiceToken: ServiceTokenConfig{
			Enabled: false,
			TTL:     2 * time.Minute,
			Issuer:  "goportal",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.ServiceToken.Secret != nil {
		out.ServiceToken.Secret = append([]byte(nil), cfg.ServiceToken.Secret...)
	}
	return out
}

func validateConfig(cfg Config) error {
	if cfg.ActionTicket.TTL <= 0 {
		return errors.New("action ticket TTL must be positive")
	}
	if cfg.ActionTicket.TombstoneTTL <= 0 {
		return errors.New("action ticket tombstone TTL must be positive")
	}
	if cfg.ActionTicket.PasswordKeyPrefix == "" || cfg.ActionTicket.ProfileKeyPrefix == "" {
		return errors.New("action ticket key prefixes must be set")
	}
	if cfg.ActionTicket.PasswordKeyPrefix == cfg.ActionTicket.ProfileKeyPrefix {
		return errors.New("action ticket scopes must use distinct key prefixes")
	}
	if cfg.SsoTicket.TTL <= 0 || cfg.SsoTicket.TombstoneTTL <= 0 {
		return errors.New("sso ticket TTLs must be positive")
	}
	if cfg.SsoTicket.KeyPrefix == "" {
		return errors.New("sso ticket key prefix must be set")
	}
	if cfg.SsoTicket.EnableIssueThrottle {
		if cfg.SsoTicket.MaxIssuePerWindow <= 0 || cfg.SsoTicket.IssueWindow <= 0 {
			return errors.New("sso ticket throttle requires positive window and budget")
		}
	}
	if cfg.PortalToken.TTL <= 0 {
		return errors.New("portal token TTL must be positive")
	}
	if cfg.PortalToken.AbsoluteSessionLifetime < cfg.PortalToken.TTL {
		return errors.New("absolute session lifetime must not be shorter than the token TTL")
	}
	if cfg.PortalToken.KeyPrefix == "" {
		return errors.New("portal token key prefix must be set")
	}
	if cfg.TokenVersion.KeyPrefix == "" {
		return errors.New("token version key prefix must be set")
	}
	if cfg.AuthCache.Enabled && (cfg.AuthCache.TTL <= 0 || cfg.AuthCache.KeyPrefix == "") {
		return errors.New("auth cache requires a TTL and key prefix")
	}
	if cfg.Crypto.Enabled && strings.TrimSpace(cfg.Crypto.Secret) == "" {
		return errors.New("password crypto requires a secret")
	}
	if cfg.Password.MinLength < 8 {
		return errors.New("password minimum length must be at least 8")
	}
	if cfg.Events.Stream == "" || cfg.Events.DedupKeyPrefix == "" {
		return errors.New("event stream and dedup key prefix must be set")
	}
	if cfg.Events.DedupTTL <= 0 {
		return errors.New("event dedup TTL must be positive")
	}
	if cfg.ServiceToken.Enabled {
		if len(cfg.ServiceToken.Secret) < 32 {
			return errors.New("service token secret must be at least 32 bytes")
		}
		if cfg.ServiceToken.TTL <= 0 {
			return errors.New("service token TTL must be positive")
		}
	}
	return nil
}
