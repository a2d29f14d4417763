package goPortal

import "sync/atomic"

// MetricID defines a public type used by goPortal APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricActionTicketIssued is an exported constant or variable used by the portal engine.
	MetricActionTicketIssued MetricID = iota
	// MetricActionTicketConsumed is an exported constant or variable used by the portal engine.
	MetricActionTicketConsumed
	// MetricActionTicketRejected is an exported constant or variable used by the portal engine.
	MetricActionTicketRejected
	// MetricActionTicketReplayed is an exported constant or variable used by the portal engine.
	MetricActionTicketReplayed
	// MetricSsoTicketIssued is an exported constant or variable used by the portal engine.
	MetricSsoTicketIssued
	// MetricSsoTicketExchanged is an exported constant or variable used by the portal engine.
	MetricSsoTicketExchanged
	// MetricSsoTicketRejected is an exported constant or variable used by the portal engine.
	MetricSsoTicketRejected
	// MetricSsoTicketReplayed is an exported constant or variable used by the portal engine.
	MetricSsoTicketReplayed
	// MetricSsoTicketRateLimited is an exported constant or variable used by the portal engine.
	MetricSsoTicketRateLimited
	// MetricPtkIssued is an exported constant or variable used by the portal engine.
	MetricPtkIssued
	// MetricPtkValidated is an exported constant or variable used by the portal engine.
	MetricPtkValidated
	// MetricPtkRejected is an exported constant or variable used by the portal engine.
	MetricPtkRejected
	// MetricPtkScopeMismatch is an exported constant or variable used by the portal engine.
	MetricPtkScopeMismatch
	// MetricPtkRenewed is an exported constant or variable used by the portal engine.
	MetricPtkRenewed
	// MetricPtkInvalidated is an exported constant or variable used by the portal engine.
	MetricPtkInvalidated
	// MetricTokenVersionBumped is an exported constant or variable used by the portal engine.
	MetricTokenVersionBumped
	// MetricPasswordChanged is an exported constant or variable used by the portal engine.
	MetricPasswordChanged
	// MetricProfileUpdated is an exported constant or variable used by the portal engine.
	MetricProfileUpdated
	// MetricAccountDisabled is an exported constant or variable used by the portal engine.
	MetricAccountDisabled
	// MetricAccountEnabled is an exported constant or variable used by the portal engine.
	MetricAccountEnabled
	// MetricForceLogout is an exported constant or variable used by the portal engine.
	MetricForceLogout
	// MetricEventPublished is an exported constant or variable used by the portal engine.
	MetricEventPublished
	// MetricEventPublishFailed is an exported constant or variable used by the portal engine.
	MetricEventPublishFailed
	// MetricEventDeduplicated is an exported constant or variable used by the portal engine.
	MetricEventDeduplicated

	metricCount
)

// Metrics is the in-process counter registry. Counters are plain atomics;
// exporters snapshot them on scrape.
type Metrics struct {
	enabled  bool
	counters [metricCount]atomic.Uint64
}

// MetricsSnapshot defines a public type used by goPortal APIs.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics describes the newmetrics operation and its observable behavior.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	return &Metrics{enabled: true}
}

// Value describes the value operation and its observable behavior.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= metricCount {
		return 0
	}
	return m.counters[id].Load()
}

// Inc describes the inc operation and its observable behavior.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricCount {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot describes the snapshot operation and its observable behavior.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snapshot := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, metricCount),
	}
	if m == nil || !m.enabled {
		return snapshot
	}
	for id := MetricID(0); id < metricCount; id++ {
		snapshot.Counters[id] = m.counters[id].Load()
	}
	return snapshot
}
