package goPortal

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goPortal/events"
)

// UpdateProfile redeems a PROFILE action ticket and applies the given field
// changes through the [UserProvider], then publishes USER_PROFILE_UPDATED
// listing the fields that changed. Nil fields in changes are left untouched;
// a change set with no fields is rejected before the ticket is consumed.
//
// Profile updates do not bump the token version: live sessions survive a
// name or phone edit.
//
// UpdateProfile may return an error when input validation, dependency calls, or security checks fail.
// UpdateProfile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) UpdateProfile(ctx context.Context, ticketID string, changes ProfileChanges) error {
	if e == nil || e.userProvider == nil {
		return ErrEngineNotReady
	}

	changed := changes.fields()
	if len(changed) == 0 {
		return fmt.Errorf("%w: empty change set", ErrInvalidArgument)
	}

	userID, err := e.ConsumeActionTicket(ctx, ticketID, ScopeProfile)
	if err != nil {
		return err
	}

	user, err := e.lookupUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := e.userProvider.UpdateProfile(ctx, userID, changes); err != nil {
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventProfileUpdate,
			UserID:    userID,
			Success:   false,
			Error:     errString(err),
		})
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	e.metricInc(MetricProfileUpdated)
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventProfileUpdate,
		UserID:    userID,
		TicketID:  ticketID,
		Success:   true,
	})

	e.publishEvent(ctx, userID, user.AuthVersion, user.ProfileVersion+1, events.ProfileUpdatedPayload{
		ChangedFields: changed,
	})
	return nil
}
