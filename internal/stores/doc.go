// Package stores implements the Redis record stores behind the portal
// engine: one-time action tickets, single-use SSO tickets, the per-user
// token-version registry, the cached authorization snapshot, and the event
// dedup markers.
//
// Every redemption is a single WATCH transaction so that two concurrent
// consumers of the same ticket can never both succeed, across any number of
// engine instances. Records are binary-encoded with a leading format version
// byte; expiry is enforced by Redis TTLs.
package stores
