// Package ptk implements the portal session token record: an opaque bearer
// value mapped to a Redis-resident record carrying the user, the scope of
// authorized system codes, and the token version it was minted against.
// Records are binary-encoded with a leading format version byte. TTL handling
// (sliding window, absolute session cap) belongs to the [Store]; the version
// comparison that actually revokes tokens belongs to the engine.
package ptk
