package goPortal

import (
	"context"
	"time"
)

// ActionScope selects which class of sensitive follow-up action a one-time
// ticket authorizes. Password and profile tickets live in isolated key
// namespaces so consuming one can never redeem the other.
type ActionScope uint8

const (
	// ScopePassword is an exported constant or variable used by the portal engine.
	ScopePassword ActionScope = 1
	// ScopeProfile is an exported constant or variable used by the portal engine.
	ScopeProfile ActionScope = 2
)

// String describes the string operation and its observable behavior.
func (s ActionScope) String() string {
	switch s {
	case ScopePassword:
		return "password"
	case ScopeProfile:
		return "profile"
	default:
		return "unknown"
	}
}

func (s ActionScope) valid() bool {
	return s == ScopePassword || s == ScopeProfile
}

// AccountStatus represents the lifecycle state of a user account as reported
// by the [UserProvider].
type AccountStatus uint8

const (
	// AccountActive is an exported constant or variable used by the portal engine.
	AccountActive AccountStatus = iota
	// AccountDisabled is an exported constant or variable used by the portal engine.
	AccountDisabled
)

// UserRecord is the opaque user snapshot consumed from the [UserProvider].
// How it is persisted is outside this module; the engine only reads it.
type UserRecord struct {
	UserID         string
	Identifier     string
	Name           string
	PasswordHash   string
	Status         AccountStatus
	Systems        []string
	AuthVersion    int64
	ProfileVersion int64
}

// ProfileChanges carries the profile fields a one-time PROFILE ticket is
// allowed to mutate. Nil fields are left untouched.
type ProfileChanges struct {
	Name  *string
	Email *string
	Phone *string
}

func (c ProfileChanges) fields() []string {
	var out []string
	if c.Name != nil {
		out = append(out, "name")
	}
	if c.Email != nil {
		out = append(out, "email")
	}
	if c.Phone != nil {
		out = append(out, "phone")
	}
	return out
}

// UserProvider is the lookup boundary for persistent user records. The portal
// engine never stores credentials or roles itself; implementations typically
// wrap the owning service's database layer.
type UserProvider interface {
	GetUserByID(ctx context.Context, userID string) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
	UpdateProfile(ctx context.Context, userID string, changes ProfileChanges) error
	UpdateStatus(ctx context.Context, userID string, status AccountStatus) error
}

// PortalIdentity is returned by [Engine.ValidatePortalToken] and
// [Engine.LookupSession]: the authenticated user, the systems the token is
// scoped to, and the token version it was minted against.
type PortalIdentity struct {
	UserID       string
	Systems      []string
	TokenVersion int64
	ExpiresAt    time.Time
}

// ExchangeResult is returned by [Engine.ExchangeForPortalToken]: the user the
// SSO ticket vouched for plus the freshly minted portal token.
type ExchangeResult struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// AuthSnapshot is the cached authorization view kept under the user:auth:
// namespace for downstream consumers. It is rebuilt from the [UserProvider]
// on miss and invalidated on every token-version bump.
type AuthSnapshot struct {
	UserID         string
	Status         AccountStatus
	Systems        []string
	AuthVersion    int64
	ProfileVersion int64
}
