package goPortal

import (
	"context"
	"fmt"
)

// TokenVersion reports the user's current token version. Users never bumped
// read as version 1.
//
// TokenVersion may return an error when input validation, dependency calls, or security checks fail.
// TokenVersion does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) TokenVersion(ctx context.Context, userID string) (int64, error) {
	if e == nil || e.tokenVersions == nil {
		return 0, ErrEngineNotReady
	}
	if userID == "" {
		return 0, fmt.Errorf("%w: empty user id", ErrInvalidArgument)
	}

	version, err := e.tokenVersions.Get(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTokenVersionUnavailable, err)
	}

	return version, nil
}

// BumpTokenVersion advances the user's token version by one and returns the
// new value. Every portal token minted against an older version fails
// validation from this moment on. The bump is atomic and monotonic under
// concurrent callers.
//
// BumpTokenVersion may return an error when input validation, dependency calls, or security checks fail.
// BumpTokenVersion does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) BumpTokenVersion(ctx context.Context, userID string) (int64, error) {
	if e == nil || e.tokenVersions == nil {
		return 0, ErrEngineNotReady
	}
	if userID == "" {
		return 0, fmt.Errorf("%w: empty user id", ErrInvalidArgument)
	}

	version, err := e.tokenVersions.Bump(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTokenVersionUnavailable, err)
	}

	e.metricInc(MetricTokenVersionBumped)
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventTokenVersionBump,
		UserID:    userID,
		Success:   true,
		Metadata:  map[string]string{"version": fmt.Sprintf("%d", version)},
	})

	return version, nil
}

// ForceLogout kicks the user out of every live portal session: it bumps the
// token version, which invalidates all outstanding portal tokens at their
// next validation, and drops the cached authorization snapshot. The tokens
// themselves expire on their own; no per-token scan is performed.
//
// ForceLogout may return an error when input validation, dependency calls, or security checks fail.
// ForceLogout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ForceLogout(ctx context.Context, userID string) error {
	if e == nil || e.tokenVersions == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidArgument)
	}

	if _, err := e.tokenVersions.Bump(ctx, userID); err != nil {
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventForceLogout,
			UserID:    userID,
			Success:   false,
			Error:     errString(err),
		})
		return fmt.Errorf("%w: %v", ErrTokenVersionUnavailable, err)
	}
	e.metricInc(MetricTokenVersionBumped)

	if e.authCache != nil {
		// Best effort: the snapshot would also fall out by TTL.
		_ = e.authCache.Invalidate(ctx, userID)
	}

	e.metricInc(MetricForceLogout)
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventForceLogout,
		UserID:    userID,
		Success:   true,
	})

	return nil
}
