package goPortal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goPortal/internal"
	"github.com/MrEthical07/goPortal/internal/limiters"
	"github.com/MrEthical07/goPortal/internal/stores"
	"github.com/MrEthical07/goPortal/redirect"
)

// IssueSsoTicket mints a single-use handoff ticket binding the user to one
// consuming system and one canonical redirect target. Issuance is rate
// limited per user; the ticket lives for a short window and is only
// redeemable through [Engine.ExchangeSsoTicket] with the same system code and
// an equivalent redirect URI.
//
// IssueSsoTicket may return an error when input validation, dependency calls, or security checks fail.
// IssueSsoTicket does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) IssueSsoTicket(ctx context.Context, userID, systemCode, redirectURI string) (string, error) {
	if e == nil || e.ssoTickets == nil {
		return "", ErrEngineNotReady
	}
	if userID == "" || systemCode == "" {
		return "", fmt.Errorf("%w: empty user id or system code", ErrInvalidArgument)
	}

	canonical := redirect.Canonicalize(redirectURI)
	if canonical == "" {
		return "", fmt.Errorf("%w: redirect uri is not an absolute http(s) uri", ErrInvalidArgument)
	}

	if e.ssoLimiter != nil {
		if err := e.ssoLimiter.CheckIssue(ctx, userID); err != nil {
			if errors.Is(err, limiters.ErrSsoIssueRateLimited) {
				e.metricInc(MetricSsoTicketRateLimited)
				e.emitAudit(ctx, AuditEvent{
					EventType: auditEventRateLimit,
					UserID:    userID,
					System:    systemCode,
					Success:   false,
					Error:     errString(ErrSsoTicketRateLimited),
				})
				return "", ErrSsoTicketRateLimited
			}
			return "", fmt.Errorf("%w: %v", ErrSsoTicketUnavailable, err)
		}
	}

	tid, err := internal.NewTicketID()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInternal, err)
	}
	ticketID := tid.String()

	record := &stores.SsoTicketRecord{
		UserID:       userID,
		SystemCode:   systemCode,
		RedirectHash: redirect.Hash(redirectURI),
		State:        stores.SsoStateIssued,
		CreatedAt:    time.Now().Unix(),
	}

	if err := e.ssoTickets.Create(ctx, ticketID, record, e.config.SsoTicket.TTL); err != nil {
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventSsoTicketIssue,
			UserID:    userID,
			System:    systemCode,
			Success:   false,
			Error:     errString(err),
		})
		return "", mapSsoStoreError(err)
	}

	e.metricInc(MetricSsoTicketIssued)
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventSsoTicketIssue,
		UserID:    userID,
		System:    systemCode,
		TicketID:  ticketID,
		Success:   true,
	})

	return ticketID, nil
}

// ExchangeSsoTicket redeems a handoff ticket on behalf of the consuming
// system and returns the user it vouches for. The system code and the
// canonicalized redirect URI must match the values bound at issuance; a
// mismatch is terminal for this caller but leaves the ticket intact. A ticket
// already exchanged reports [ErrSsoTicketStateMismatch].
//
// ExchangeSsoTicket may return an error when input validation, dependency calls, or security checks fail.
// ExchangeSsoTicket does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ExchangeSsoTicket(ctx context.Context, ticketID, systemCode, redirectURI string) (string, error) {
	if e == nil || e.ssoTickets == nil {
		return "", ErrEngineNotReady
	}
	if ticketID == "" || systemCode == "" {
		return "", fmt.Errorf("%w: empty ticket id or system code", ErrInvalidArgument)
	}

	record, err := e.ssoTickets.Exchange(
		ctx,
		ticketID,
		systemCode,
		redirect.Hash(redirectURI),
		e.config.SsoTicket.TombstoneTTL,
	)
	if err != nil {
		mapped := mapSsoStoreError(err)
		eventType := auditEventSsoTicketExchange
		if errors.Is(mapped, ErrSsoTicketStateMismatch) {
			eventType = auditEventSsoTicketReplay
			e.metricInc(MetricSsoTicketReplayed)
		} else {
			e.metricInc(MetricSsoTicketRejected)
		}
		e.emitAudit(ctx, AuditEvent{
			EventType: eventType,
			System:    systemCode,
			TicketID:  ticketID,
			Success:   false,
			Error:     errString(mapped),
		})
		return "", mapped
	}

	e.metricInc(MetricSsoTicketExchanged)
	e.emitAudit(ctx, AuditEvent{
		EventType: auditEventSsoTicketExchange,
		UserID:    record.UserID,
		System:    systemCode,
		TicketID:  ticketID,
		Success:   true,
	})

	return record.UserID, nil
}

// ExchangeForPortalToken is the login handoff: it redeems the SSO ticket and
// immediately mints a portal token for the user, scoped to the systems the
// user currently holds. Target systems call this once per redirect instead of
// composing [Engine.ExchangeSsoTicket] and [Engine.IssuePortalToken]
// themselves.
//
// ExchangeForPortalToken may return an error when input validation, dependency calls, or security checks fail.
// ExchangeForPortalToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ExchangeForPortalToken(ctx context.Context, ticketID, systemCode, redirectURI string) (*ExchangeResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	userID, err := e.ExchangeSsoTicket(ctx, ticketID, systemCode, redirectURI)
	if err != nil {
		return nil, err
	}

	user, err := e.lookupUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status != AccountActive {
		return nil, ErrForbidden
	}

	token, expiresAt, err := e.IssuePortalToken(ctx, userID, user.Systems)
	if err != nil {
		return nil, err
	}

	return &ExchangeResult{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (e *Engine) lookupUser(ctx context.Context, userID string) (UserRecord, error) {
	if e.userProvider == nil {
		return UserRecord{}, ErrEngineNotReady
	}

	user, err := e.userProvider.GetUserByID(ctx, userID)
	if err != nil {
		return UserRecord{}, fmt.Errorf("%w: %v", ErrUserNotFound, err)
	}
	if user.UserID == "" {
		return UserRecord{}, ErrUserNotFound
	}

	return user, nil
}

func mapSsoStoreError(err error) error {
	switch {
	case errors.Is(err, stores.ErrSsoNotFound), errors.Is(err, stores.ErrSsoExists):
		return ErrSsoTicketInvalid
	case errors.Is(err, stores.ErrSsoConsumed):
		return ErrSsoTicketStateMismatch
	case errors.Is(err, stores.ErrSsoSystemMismatch):
		return ErrSsoTicketClientMismatch
	case errors.Is(err, stores.ErrSsoRedirectMismatch):
		return ErrSsoTicketRedirectUriMismatch
	default:
		return fmt.Errorf("%w: %v", ErrSsoTicketUnavailable, err)
	}
}
