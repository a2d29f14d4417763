package goPortal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goPortal/internal"
	"github.com/MrEthical07/goPortal/internal/stores"
)

// IssueActionTicket mints a one-time ticket authorizing a single sensitive
// follow-up action for the user. The caller must already have completed the
// prerequisite verification step (for example an SMS code); this method does
// not re-verify it.
//
// IssueActionTicket may return an error when input validation, dependency calls, or security checks fail.
// IssueActionTicket does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) IssueActionTicket(ctx context.Context, userID string, scope ActionScope) (string, error) {
	if e == nil || e.actionTickets == nil {
		return "", ErrEngineNotReady
	}
	if userID == "" {
		return "", fmt.Errorf("%w: empty user id", ErrInvalidArgument)
	}
	if !scope.valid() {
		return "", fmt.Errorf("%w: unknown action scope", ErrInvalidArgument)
	}

	tid, err := internal.NewTicketID()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInternal, err)
	}
	ticketID := tid.String()

	now := time.Now()
	record := &stores.ActionTicketRecord{
		UserID:    userID,
		Scope:     uint8(scope),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(e.config.ActionTicket.TTL).Unix(),
	}

	if err := e.actionTickets.Create(ctx, ticketID, record, e.config.ActionTicket.TTL); err != nil {
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventActionTicketIssue,
			UserID:    userID,
			Success:   false,
			Error:     errString(err),
			Metadata:  map[string]string{"scope": scope.String()},
		})
		return "", mapActionStoreError(err)
	}

	e.metricInc(MetricActionTicketIssued)
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventActionTicketIssue,
		UserID:    userID,
		TicketID:  ticketID,
		Success:   true,
		Metadata:  map[string]string{"scope": scope.String()},
	})

	return ticketID, nil
}

// ConsumeActionTicket redeems a one-time ticket and returns the user it was
// issued to. Redemption is atomic: of two concurrent calls with the same id,
// at most one succeeds and the other observes a replay. A ticket that the
// store no longer holds reports [ErrActionTicketInvalid]; true expiry is not
// distinguishable from never-issued once the TTL has fired.
//
// ConsumeActionTicket may return an error when input validation, dependency calls, or security checks fail.
// ConsumeActionTicket does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ConsumeActionTicket(ctx context.Context, ticketID string, scope ActionScope) (string, error) {
	if e == nil || e.actionTickets == nil {
		return "", ErrEngineNotReady
	}
	if ticketID == "" {
		return "", fmt.Errorf("%w: empty ticket id", ErrInvalidArgument)
	}
	if !scope.valid() {
		return "", fmt.Errorf("%w: unknown action scope", ErrInvalidArgument)
	}

	record, err := e.actionTickets.Consume(ctx, ticketID, uint8(scope), e.config.ActionTicket.TombstoneTTL)
	if err != nil {
		mapped := mapActionStoreError(err)
		if errors.Is(mapped, ErrActionTicketReplayed) {
			e.metricInc(MetricActionTicketReplayed)
			e.emitAudit(ctx, AuditEvent{
				EventType: auditEventActionTicketReplay,
				TicketID:  ticketID,
				Success:   false,
				Error:     errString(mapped),
				Metadata:  map[string]string{"scope": scope.String()},
			})
			return "", mapped
		}

		e.metricInc(MetricActionTicketRejected)
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventActionTicketConsume,
			TicketID:  ticketID,
			Success:   false,
			Error:     errString(mapped),
			Metadata:  map[string]string{"scope": scope.String()},
		})
		return "", mapped
	}

	e.metricInc(MetricActionTicketConsumed)
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventActionTicketConsume,
		UserID:    record.UserID,
		TicketID:  ticketID,
		Success:   true,
		Metadata:  map[string]string{"scope": scope.String()},
	})

	return record.UserID, nil
}

func mapActionStoreError(err error) error {
	switch {
	case errors.Is(err, stores.ErrActionNotFound), errors.Is(err, stores.ErrActionExists):
		return ErrActionTicketInvalid
	case errors.Is(err, stores.ErrActionExpired):
		return ErrActionTicketExpired
	case errors.Is(err, stores.ErrActionReplayed):
		return ErrActionTicketReplayed
	case errors.Is(err, stores.ErrActionRedisUnavailable):
		return fmt.Errorf("%w: %v", ErrActionTicketUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrActionTicketUnavailable, err)
	}
}
