package goPortal

import (
	"context"
	"time"

	"github.com/MrEthical07/goPortal/events"
	"github.com/MrEthical07/goPortal/internal/limiters"
	"github.com/MrEthical07/goPortal/internal/stores"
	"github.com/MrEthical07/goPortal/passcrypt"
	"github.com/MrEthical07/goPortal/password"
	"github.com/MrEthical07/goPortal/ptk"
	"github.com/MrEthical07/goPortal/svctoken"
)

// Engine defines a public type used by goPortal APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config        Config
	actionTickets *stores.ActionTicketStore
	ssoTickets    *stores.SsoTicketStore
	ssoLimiter    *limiters.SsoIssueLimiter
	tokenVersions *stores.TokenVersionStore
	authCache     *stores.AuthCacheStore
	dedup         *stores.DedupStore
	ptkStore      *ptk.Store
	publisher     *events.Publisher
	decryptor     *passcrypt.Decryptor
	passwordHash  *password.Hasher
	serviceTokens *svctoken.Manager
	audit         *auditDispatcher
	metrics       *Metrics
	userProvider  UserProvider
}

// Close describes the close operation and its observable behavior.
//
// Close drains the audit dispatcher; call it on shutdown after the last
// Engine method has returned.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, event AuditEvent) {
	if e == nil || e.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.IP == "" {
		event.IP = clientIPFromContext(ctx)
	}
	e.audit.Emit(ctx, event)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
