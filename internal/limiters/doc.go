// Package limiters implements fixed-window Redis counters guarding abusable
// portal operations. Counters are Incr-then-Expire: TTL is set only for the
// first hit in the window.
package limiters
