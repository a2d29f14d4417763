// Package goPortal provides the ticket and token lifecycle engine that binds a
// browser session across a gateway, a central authentication service, and a
// portal service: one-time action tickets guarding sensitive operations, the
// single-use SSO ticket exchange with redirect-URI binding, the Redis-backed
// portal session token (PTK) with scope and version checks, the per-user
// token-version registry that forces global logout, and the at-least-once
// event stream that keeps downstream authorization caches coherent.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build]. Correctness does not rely on in-process locking — every
// ticket and token operation is a single atomic Redis operation (conditional
// create, transactional read-and-tombstone, counter increment), so the
// guarantees hold across any number of service instances.
//
// # Architecture boundaries
//
// goPortal is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (PortalIdentity, ExchangeResult, MetricsSnapshot, etc.).
// Internal coordination — record encoding, store transactions, rate limiting,
// audit dispatch — lives under internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or record encodings in its
//     public API.
//   - Persist or interpret user records. Credentials, status, and profile are
//     opaque lookups behind [UserProvider].
//   - Retry a consumed ticket. Every ticket and token failure is terminal for
//     the current attempt; only store-connectivity errors are retryable by
//     callers.
//
// # Expiry contract
//
// Expiry is enforced by Redis TTLs, never by application timers. A key that
// the store no longer holds is reported as invalid; consumed tickets leave a
// short-lived tombstone so an immediate replay is surfaced as a replay rather
// than collapsing into "never existed".
package goPortal
