// Package redirect normalizes and hashes redirect targets so an SSO ticket
// can be bound to the meaning of a URL rather than its spelling. Scheme and
// host compare case-insensitively; path, query, port, and user-info are
// preserved exactly; fragments are dropped. Comparing canonical hashes
// instead of raw strings closes the trivial bypasses (host casing, fragment
// smuggling) without guessing at per-system path semantics.
package redirect

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// Canonicalize returns the comparable form of a redirect URI: lower-cased
// scheme and host, raw path and query preserved, fragment removed. Inputs
// that do not parse as absolute URLs canonicalize to the empty string.
func Canonicalize(rawURI string) string {
	if strings.TrimSpace(rawURI) == "" {
		return ""
	}

	u, err := url.Parse(rawURI)
	if err != nil {
		return ""
	}
	if u.Scheme == "" || u.Host == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(strings.ToLower(u.Scheme))
	b.WriteString("://")
	if u.User != nil {
		b.WriteString(u.User.String())
		b.WriteByte('@')
	}
	b.WriteString(strings.ToLower(u.Host))
	b.WriteString(u.EscapedPath())
	if u.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(u.RawQuery)
	}

	return b.String()
}

// Hash returns the hex SHA-256 digest of the canonical form. The empty
// canonical form hashes to the empty string, which never matches a stored
// non-empty hash.
func Hash(rawURI string) string {
	canonical := Canonicalize(rawURI)
	if canonical == "" {
		return ""
	}

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
