package goPortal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goPortal/internal"
	"github.com/MrEthical07/goPortal/ptk"
)

// IssuePortalToken mints an opaque portal token for the user, scoped to the
// given system codes and stamped with the user's current token version. The
// token expires after the configured TTL; [Engine.ValidatePortalToken] slides
// that TTL when sliding expiry is enabled.
//
// IssuePortalToken may return an error when input validation, dependency calls, or security checks fail.
// IssuePortalToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) IssuePortalToken(ctx context.Context, userID string, scopeSystems []string) (string, time.Time, error) {
	if e == nil || e.ptkStore == nil || e.tokenVersions == nil {
		return "", time.Time{}, ErrEngineNotReady
	}
	if userID == "" {
		return "", time.Time{}, fmt.Errorf("%w: empty user id", ErrInvalidArgument)
	}
	if len(scopeSystems) == 0 {
		return "", time.Time{}, fmt.Errorf("%w: empty scope", ErrInvalidArgument)
	}

	version, err := e.tokenVersions.Get(ctx, userID)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrTokenVersionUnavailable, err)
	}

	token, err := internal.NewPortalToken()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	now := time.Now()
	expiresAt := now.Add(e.config.PortalToken.TTL)
	record := &ptk.Token{
		Token:        token,
		UserID:       userID,
		Systems:      append([]string(nil), scopeSystems...),
		TokenVersion: version,
		CreatedAt:    now.Unix(),
		ExpiresAt:    expiresAt.Unix(),
	}

	if err := e.ptkStore.Save(ctx, record, e.config.PortalToken.TTL); err != nil {
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventPtkIssue,
			UserID:    userID,
			Success:   false,
			Error:     errString(err),
		})
		return "", time.Time{}, mapPtkStoreError(err)
	}

	e.metricInc(MetricPtkIssued)
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventPtkIssue,
		UserID:    userID,
		Success:   true,
	})

	return token, expiresAt, nil
}

// ValidatePortalToken authenticates a request bearing a portal token on
// behalf of callerSystem. An absent or expired token reports
// [ErrPtkInvalid]; so does a token whose stamped version no longer matches
// the user's current token version, which keeps revoked sessions
// indistinguishable from garbage tokens. A live token scoped to other
// systems reports [ErrPtkScopeMismatch]. Success slides the TTL when sliding
// expiry is enabled.
//
// ValidatePortalToken may return an error when input validation, dependency calls, or security checks fail.
// ValidatePortalToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ValidatePortalToken(ctx context.Context, token, callerSystem string) (*PortalIdentity, error) {
	if e == nil || e.ptkStore == nil || e.tokenVersions == nil {
		return nil, ErrEngineNotReady
	}
	if token == "" || callerSystem == "" {
		return nil, fmt.Errorf("%w: empty token or system code", ErrInvalidArgument)
	}

	record, err := e.ptkStore.Get(ctx, token)
	if err != nil {
		e.metricInc(MetricPtkRejected)
		return nil, mapPtkStoreError(err)
	}

	if !record.HasSystem(callerSystem) {
		e.metricInc(MetricPtkScopeMismatch)
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventPtkValidate,
			UserID:    record.UserID,
			System:    callerSystem,
			Success:   false,
			Error:     errString(ErrPtkScopeMismatch),
		})
		return nil, ErrPtkScopeMismatch
	}

	current, err := e.tokenVersions.Get(ctx, record.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenVersionUnavailable, err)
	}
	if record.TokenVersion != current {
		e.metricInc(MetricPtkRejected)
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventPtkValidate,
			UserID:    record.UserID,
			System:    callerSystem,
			Success:   false,
			Error:     errString(ErrPtkInvalid),
		})
		// Stale tokens are dead weight once the version moved on.
		_ = e.ptkStore.Delete(ctx, token)
		return nil, ErrPtkInvalid
	}

	expiresAt := time.Unix(record.ExpiresAt, 0)
	if e.config.PortalToken.SlidingExpiration {
		slid, err := e.ptkStore.Slide(ctx, token, e.config.PortalToken.TTL)
		if err == nil {
			record = slid
			expiresAt = time.Unix(slid.ExpiresAt, 0)
		} else if !errors.Is(err, ptk.ErrTokenNotFound) {
			return nil, mapPtkStoreError(err)
		}
	}

	e.metricInc(MetricPtkValidated)

	return &PortalIdentity{
		UserID:       record.UserID,
		Systems:      append([]string(nil), record.Systems...),
		TokenVersion: record.TokenVersion,
		ExpiresAt:    expiresAt,
	}, nil
}

// RenewPortalToken slides the token's TTL without a scope check, unless the
// session has passed the absolute lifetime cap, in which case it reports
// [ErrPtkSessionTooOld] and the user must authenticate again.
//
// RenewPortalToken may return an error when input validation, dependency calls, or security checks fail.
// RenewPortalToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RenewPortalToken(ctx context.Context, token string) (time.Time, error) {
	if e == nil || e.ptkStore == nil {
		return time.Time{}, ErrEngineNotReady
	}
	if token == "" {
		return time.Time{}, fmt.Errorf("%w: empty token", ErrInvalidArgument)
	}

	record, err := e.ptkStore.Get(ctx, token)
	if err != nil {
		return time.Time{}, mapPtkStoreError(err)
	}

	if maxAge := e.config.PortalToken.AbsoluteSessionLifetime; maxAge > 0 {
		age := time.Since(time.Unix(record.CreatedAt, 0))
		if age >= maxAge {
			e.emitAudit(ctx, AuditEvent{
				EventType: auditEventPtkRenew,
				UserID:    record.UserID,
				Success:   false,
				Error:     errString(ErrPtkSessionTooOld),
			})
			return time.Time{}, ErrPtkSessionTooOld
		}
	}

	slid, err := e.ptkStore.Slide(ctx, token, e.config.PortalToken.TTL)
	if err != nil {
		return time.Time{}, mapPtkStoreError(err)
	}

	e.metricInc(MetricPtkRenewed)
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventPtkRenew,
		UserID:    slid.UserID,
		Success:   true,
	})

	return time.Unix(slid.ExpiresAt, 0), nil
}

// LookupSession resolves a portal token to its identity without a caller
// scope check and without sliding the TTL. Intended for introspection
// surfaces that need to display session state, not authenticate requests.
//
// LookupSession may return an error when input validation, dependency calls, or security checks fail.
// LookupSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) LookupSession(ctx context.Context, token string) (*PortalIdentity, error) {
	if e == nil || e.ptkStore == nil || e.tokenVersions == nil {
		return nil, ErrEngineNotReady
	}
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidArgument)
	}

	record, err := e.ptkStore.Get(ctx, token)
	if err != nil {
		return nil, mapPtkStoreError(err)
	}

	current, err := e.tokenVersions.Get(ctx, record.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenVersionUnavailable, err)
	}
	if record.TokenVersion != current {
		return nil, ErrPtkInvalid
	}

	return &PortalIdentity{
		UserID:       record.UserID,
		Systems:      append([]string(nil), record.Systems...),
		TokenVersion: record.TokenVersion,
		ExpiresAt:    time.Unix(record.ExpiresAt, 0),
	}, nil
}

// InvalidatePortalToken removes a single portal token, logging the user out
// of that one session. It is idempotent; unknown tokens are not an error.
// For a user-wide logout see [Engine.ForceLogout].
//
// InvalidatePortalToken may return an error when input validation, dependency calls, or security checks fail.
// InvalidatePortalToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) InvalidatePortalToken(ctx context.Context, token string) error {
	if e == nil || e.ptkStore == nil {
		return ErrEngineNotReady
	}
	if token == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidArgument)
	}

	if err := e.ptkStore.Delete(ctx, token); err != nil {
		return mapPtkStoreError(err)
	}

	e.metricInc(MetricPtkInvalidated)
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventPtkInvalidate,
		Success:   true,
	})

	return nil
}

func mapPtkStoreError(err error) error {
	switch {
	case errors.Is(err, ptk.ErrTokenNotFound):
		return ErrPtkInvalid
	case errors.Is(err, ptk.ErrTokenExists):
		return fmt.Errorf("%w: token collision", ErrPtkUnavailable)
	default:
		return fmt.Errorf("%w: %v", ErrPtkUnavailable, err)
	}
}
