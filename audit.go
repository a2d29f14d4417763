package goPortal

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// AuditEvent is the structured security record emitted for every ticket and
// token operation. Passwords and ticket payloads are never included; ticket
// identifiers are, because they are single-use and worthless once logged.
type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	System    string            `json:"system,omitempty"`
	TicketID  string            `json:"ticket_id,omitempty"`
	IP        string            `json:"ip,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AuditSink receives emitted audit events.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink drops audit events.
type NoOpSink struct{}

// Emit describes the emit operation and its observable behavior.
func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink writes audit events into a buffered channel.
type ChannelSink struct {
	events chan AuditEvent
}

// NewChannelSink describes the newchannelsink operation and its observable behavior.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
	}
}

// Emit describes the emit operation and its observable behavior.
func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events describes the events operation and its observable behavior.
func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink describes the newjsonwritersink operation and its observable behavior.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

// Emit describes the emit operation and its observable behavior.
func (s *JSONWriterSink) Emit(ctx context.Context, event AuditEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

const (
	auditEventActionTicketIssue   = "action_ticket_issue"
	auditEventActionTicketConsume = "action_ticket_consume"
	auditEventActionTicketReplay  = "action_ticket_replay"
	auditEventSsoTicketIssue      = "sso_ticket_issue"
	auditEventSsoTicketExchange   = "sso_ticket_exchange"
	auditEventSsoTicketReplay     = "sso_ticket_replay"
	auditEventPtkIssue            = "ptk_issue"
	auditEventPtkValidate         = "ptk_validate"
	auditEventPtkRenew            = "ptk_renew"
	auditEventPtkInvalidate       = "ptk_invalidate"
	auditEventTokenVersionBump    = "token_version_bump"
	auditEventPasswordChange      = "password_change"
	auditEventProfileUpdate       = "profile_update"
	auditEventAccountStatus       = "account_status_change"
	auditEventForceLogout         = "force_logout"
	auditEventPublishFailure      = "event_publish_failure"
	auditEventRateLimit           = "rate_limit"
)
