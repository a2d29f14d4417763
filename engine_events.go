package goPortal

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goPortal/events"
)

// PublishEvent appends a caller-constructed portal event to the stream.
// State-changing engine methods publish their own events; this entry point
// exists for boundary layers that mutate user state outside the engine and
// still need to notify downstream systems. Delivery is at-least-once.
//
// PublishEvent may return an error when input validation, dependency calls, or security checks fail.
// PublishEvent does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) PublishEvent(ctx context.Context, event events.Event) error {
	if e == nil || e.publisher == nil {
		return ErrEngineNotReady
	}

	if err := e.publisher.Publish(ctx, event); err != nil {
		e.metricInc(MetricEventPublishFailed)
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventPublishFailure,
			UserID:    event.UserID,
			Success:   false,
			Error:     errString(err),
			Metadata:  map[string]string{"event_type": string(event.Type)},
		})
		if errors.Is(err, events.ErrInvalidEvent) {
			return fmt.Errorf("%w: %v", ErrEventInvalid, err)
		}
		return fmt.Errorf("%w: %v", ErrEventUnavailable, err)
	}

	e.metricInc(MetricEventPublished)
	return nil
}

// ShouldProcessEvent is the consumer-side dedup gate. The first caller for a
// given (systemCode, eventID) pair gets true and owns processing; every
// later caller, including redeliveries after a crash, gets false. The marker
// outlives the stream's retention window so a late redelivery can never slip
// through.
//
// ShouldProcessEvent may return an error when input validation, dependency calls, or security checks fail.
// ShouldProcessEvent does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ShouldProcessEvent(ctx context.Context, systemCode, eventID string) (bool, error) {
	if e == nil || e.dedup == nil {
		return false, ErrEngineNotReady
	}
	if systemCode == "" || eventID == "" {
		return false, fmt.Errorf("%w: empty system code or event id", ErrInvalidArgument)
	}

	first, err := e.dedup.ShouldProcess(ctx, systemCode, eventID, e.config.Events.DedupTTL)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrEventUnavailable, err)
	}

	if !first {
		e.metricInc(MetricEventDeduplicated)
	}
	return first, nil
}

// publishEvent assembles and publishes a portal event on behalf of a
// state-changing engine method. The operator comes from the context; absent
// an explicit operator the user is recorded as acting on their own behalf.
// Publish failures are counted and audited, never propagated: the triggering
// mutation has already committed.
func (e *Engine) publishEvent(ctx context.Context, userID string, authVersion, profileVersion int64, payload events.Payload) {
	if e == nil || e.publisher == nil {
		return
	}

	op := operatorFromContext(ctx)
	if op.ID == "" {
		op = Operator{ID: userID, Name: "self"}
	}

	event, err := events.New(userID, authVersion, profileVersion, events.Operator{
		ID:   op.ID,
		Name: op.Name,
	}, payload)
	if err != nil {
		e.metricInc(MetricEventPublishFailed)
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventPublishFailure,
			UserID:    userID,
			Success:   false,
			Error:     errString(err),
		})
		return
	}

	if err := e.publisher.Publish(ctx, event); err != nil {
		e.metricInc(MetricEventPublishFailed)
		e.emitAudit(ctx, AuditEvent{
			EventType: auditEventPublishFailure,
			UserID:    userID,
			Success:   false,
			Error:     errString(err),
			Metadata:  map[string]string{"event_type": string(event.Type)},
		})
		return
	}

	e.metricInc(MetricEventPublished)
}
