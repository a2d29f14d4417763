package goPortal

import (
	"errors"

	"github.com/MrEthical07/goPortal/events"
	"github.com/MrEthical07/goPortal/internal/limiters"
	"github.com/MrEthical07/goPortal/internal/stores"
	"github.com/MrEthical07/goPortal/passcrypt"
	"github.com/MrEthical07/goPortal/password"
	"github.com/MrEthical07/goPortal/ptk"
	"github.com/MrEthical07/goPortal/svctoken"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by goPortal APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	userProvider UserProvider
	auditSink    AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New returns a builder seeded with the default configuration: spec TTLs and
// the authoritative key namespace other services match byte-for-byte.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration. Prefer the narrower With*
// methods when only one section changes.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the shared Redis client every store runs against.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserProvider wires the opaque user-record lookup used by password,
// profile, and status flows.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithAuditSink routes audit events to the given sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithPasswordCrypto enables transport decryption of submitted passwords.
func (b *Builder) WithPasswordCrypto(secret string) *Builder {
	b.config.Crypto.Enabled = true
	b.config.Crypto.Secret = secret
	return b
}

// WithServiceTokenSecret enables the internal service-token surface.
func (b *Builder) WithServiceTokenSecret(secret []byte) *Builder {
	b.config.ServiceToken.Enabled = true
	b.config.ServiceToken.Secret = append([]byte(nil), secret...)
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wires the engine. A builder is
// single-use; a second Build returns an error.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client is required")
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	engine := &Engine{
		config: b.config,
		actionTickets: stores.NewActionTicketStore(
			b.redis,
			b.config.ActionTicket.PasswordKeyPrefix,
			b.config.ActionTicket.ProfileKeyPrefix,
		),
		ssoTickets:    stores.NewSsoTicketStore(b.redis, b.config.SsoTicket.KeyPrefix),
		tokenVersions: stores.NewTokenVersionStore(b.redis, b.config.TokenVersion.KeyPrefix),
		dedup:         stores.NewDedupStore(b.redis, b.config.Events.DedupKeyPrefix),
		ptkStore:      ptk.NewStore(b.redis, b.config.PortalToken.KeyPrefix),
		publisher:     events.NewPublisher(b.redis, b.config.Events.Stream, b.config.Events.MaxStreamLen),
		decryptor:     passcrypt.New(b.config.Crypto.Enabled, b.config.Crypto.Secret),
		metrics:       NewMetrics(b.config.Metrics),
		audit:         newAuditDispatcher(b.config.Audit, b.auditSink),
		userProvider:  b.userProvider,
	}

	engine.ssoLimiter = limiters.NewSsoIssueLimiter(b.redis, limiters.SsoIssueConfig{
		Enabled:           b.config.SsoTicket.EnableIssueThrottle,
		MaxIssuePerWindow: b.config.SsoTicket.MaxIssuePerWindow,
		Window:            b.config.SsoTicket.IssueWindow,
	})

	if b.config.AuthCache.Enabled {
		engine.authCache = stores.NewAuthCacheStore(b.redis, b.config.AuthCache.KeyPrefix)
	}

	hasher, err := password.NewHasher(password.Config{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}
	engine.passwordHash = hasher

	if b.config.ServiceToken.Enabled {
		manager, err := svctoken.NewManager(svctoken.Config{
			Secret: b.config.ServiceToken.Secret,
			TTL:    b.config.ServiceToken.TTL,
			Issuer: b.config.ServiceToken.Issuer,
		})
		if err != nil {
			return nil, err
		}
		engine.serviceTokens = manager
	}

	b.built = true
	return engine, nil
}
