// Package events implements the portal event pipeline: immutable,
// strongly-typed domain events appended to a Redis stream with at-least-once
// delivery, and the consumer-group reader that downstream systems drain.
//
// Delivery is deliberately outside any transactional boundary with the state
// change that produced the event; a crash between mutation and append loses
// the event. Consumers therefore treat the token-version registry as the
// authoritative signal and use the event stream only to refresh caches.
// Effective at-most-once processing per consumer system comes from the dedup
// markers owned by the engine, not from the stream itself.
package events
