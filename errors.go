package goPortal

import "errors"

var (
	// ErrEngineNotReady is an exported constant or variable used by the portal engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrInvalidArgument is an exported constant or variable used by the portal engine.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthenticated is an exported constant or variable used by the portal engine.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is an exported constant or variable used by the portal engine.
	ErrForbidden = errors.New("forbidden")
	// ErrUserNotFound is an exported constant or variable used by the portal engine.
	ErrUserNotFound = errors.New("user not found")

	// ErrActionTicketInvalid is an exported constant or variable used by the portal engine.
	ErrActionTicketInvalid = errors.New("action ticket invalid")
	// ErrActionTicketExpired is an exported constant or variable used by the portal engine.
	ErrActionTicketExpired = errors.New("action ticket expired")
	// ErrActionTicketReplayed is an exported constant or variable used by the portal engine.
	ErrActionTicketReplayed = errors.New("action ticket replay detected")
	// ErrActionTicketUnavailable is an exported constant or variable used by the portal engine.
	ErrActionTicketUnavailable = errors.New("action ticket backend unavailable")

	// ErrSsoTicketInvalid is an exported constant or variable used by the portal engine.
	ErrSsoTicketInvalid = errors.New("sso ticket invalid")
	// ErrSsoTicketClientMismatch is an exported constant or variable used by the portal engine.
	ErrSsoTicketClientMismatch = errors.New("sso ticket requesting system mismatch")
	// ErrSsoTicketRedirectUriMismatch is an exported constant or variable used by the portal engine.
	ErrSsoTicketRedirectUriMismatch = errors.New("sso ticket redirect uri mismatch")
	// ErrSsoTicketStateMismatch is an exported constant or variable used by the portal engine.
	ErrSsoTicketStateMismatch = errors.New("sso ticket already exchanged")
	// ErrSsoTicketRateLimited is an exported constant or variable used by the portal engine.
	ErrSsoTicketRateLimited = errors.New("sso ticket issuance rate limited")
	// ErrSsoTicketUnavailable is an exported constant or variable used by the portal engine.
	ErrSsoTicketUnavailable = errors.New("sso ticket backend unavailable")

	// ErrPtkInvalid is an exported constant or variable used by the portal engine.
	ErrPtkInvalid = errors.New("portal token invalid")
	// ErrPtkExpired is an exported constant or variable used by the portal engine.
	ErrPtkExpired = errors.New("portal token expired")
	// ErrPtkScopeMismatch is an exported constant or variable used by the portal engine.
	ErrPtkScopeMismatch = errors.New("portal token scope mismatch")
	// ErrPtkSessionTooOld is an exported constant or variable used by the portal engine.
	ErrPtkSessionTooOld = errors.New("portal session exceeded absolute lifetime")
	// ErrPtkUnavailable is an exported constant or variable used by the portal engine.
	ErrPtkUnavailable = errors.New("portal token backend unavailable")

	// ErrTokenVersionUnavailable is an exported constant or variable used by the portal engine.
	ErrTokenVersionUnavailable = errors.New("token version backend unavailable")

	// ErrDecryptionFailed is an exported constant or variable used by the portal engine.
	ErrDecryptionFailed = errors.New("password decryption failed")
	// ErrPasswordPolicy is an exported constant or variable used by the portal engine.
	ErrPasswordPolicy = errors.New("password policy violation")

	// ErrEventInvalid is an exported constant or variable used by the portal engine.
	ErrEventInvalid = errors.New("portal event invalid")
	// ErrEventUnavailable is an exported constant or variable used by the portal engine.
	ErrEventUnavailable = errors.New("portal event backend unavailable")

	// ErrServiceTokenInvalid is an exported constant or variable used by the portal engine.
	ErrServiceTokenInvalid = errors.New("service token invalid")

	// ErrInternal is an exported constant or variable used by the portal engine.
	ErrInternal = errors.New("internal error")
)
