package goPortal

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goPortal/events"
)

// SetAccountStatus disables or re-enables a user account through the
// [UserProvider]. Disabling bumps the token version so every live portal
// session dies at its next validation; re-enabling does not, the user simply
// authenticates again. Both directions drop the cached authorization
// snapshot and publish USER_DISABLED or USER_ENABLED.
//
// SetAccountStatus may return an error when input validation, dependency calls, or security checks fail.
// SetAccountStatus does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SetAccountStatus(ctx context.Context, userID string, disabled bool, reason string) error {
	if e == nil || e.userProvider == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidArgument)
	}

	user, err := e.lookupUser(ctx, userID)
	if err != nil {
		return err
	}

	status := AccountActive
	if disabled {
		status = AccountDisabled
	}

	if err := e.userProvider.UpdateStatus(ctx, userID, status); err != nil {
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventAccountStatus,
			UserID:    userID,
			Success:   false,
			Error:     errString(err),
		})
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	authVersion := user.AuthVersion
	if disabled {
		bumped, err := e.tokenVersions.Bump(ctx, userID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTokenVersionUnavailable, err)
		}
		e.metricInc(MetricTokenVersionBumped)
		authVersion = bumped
	}

	if e.authCache != nil {
		_ = e.authCache.Invalidate(ctx, userID)
	}

	if disabled {
		e.metricInc(MetricAccountDisabled)
	} else {
		e.metricInc(MetricAccountEnabled)
	}
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventAccountStatus,
		UserID:    userID,
		Success:   true,
		Metadata:  map[string]string{"disabled": fmt.Sprintf("%t", disabled)},
	})

	e.publishEvent(ctx, userID, authVersion, user.ProfileVersion, events.StatusChangedPayload{
		Disabled: disabled,
		Reason:   reason,
	})
	return nil
}
