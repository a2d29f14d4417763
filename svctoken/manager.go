// Package svctoken mints and verifies the short-lived HS256 tokens that gate
// internal service-to-service surfaces — most importantly the forced-logout
// (kick) endpoint, which must never be reachable with a browser credential.
// These tokens identify a calling system, not a user, and are deliberately
// separate from the opaque portal token machinery.
package svctoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is an exported constant or variable used by the portal engine.
	ErrInvalidToken = errors.New("invalid service token")
	// ErrMisconfigured is an exported constant or variable used by the portal engine.
	ErrMisconfigured = errors.New("service token manager misconfigured")
)

// Config defines a public type used by goPortal APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	Leeway time.Duration
}

// Manager defines a public type used by goPortal APIs.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	config Config
}

type serviceClaims struct {
	System string `json:"sys"`
	jwt.RegisteredClaims
}

// NewManager validates the signing configuration. The secret must be long
// enough that HS256 brute force is off the table.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 32 {
		return nil, fmt.Errorf("%w: secret shorter than 32 bytes", ErrMisconfigured)
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("%w: non-positive TTL", ErrMisconfigured)
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, fmt.Errorf("%w: invalid leeway", ErrMisconfigured)
	}
	return &Manager{config: cfg}, nil
}

// Issue signs a token asserting that systemCode is making an internal call.
func (m *Manager) Issue(systemCode string) (string, error) {
	if systemCode == "" {
		return "", fmt.Errorf("%w: empty system code", ErrMisconfigured)
	}

	now := time.Now()
	claims := serviceClaims{
		System: systemCode,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   systemCode,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.Secret)
}

// Verify checks signature, expiry, and issuer, and returns the asserted
// system code. Every failure collapses to [ErrInvalidToken]; the caller gets
// no oracle for why a forged token was rejected.
func (m *Manager) Verify(tokenString string) (string, error) {
	claims := &serviceClaims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.config.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithLeeway(m.config.Leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.System == "" {
		return "", ErrInvalidToken
	}

	return claims.System, nil
}
