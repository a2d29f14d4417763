package ptk

// Token defines a public type used by goPortal APIs.
//
// Token instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Token struct {
	Token        string
	UserID       string
	Systems      []string
	TokenVersion int64

	CreatedAt int64
	ExpiresAt int64
}

// HasSystem reports whether the token's scope covers the given system code.
func (t *Token) HasSystem(systemCode string) bool {
	if t == nil {
		return false
	}
	for _, system := range t.Systems {
		if system == systemCode {
			return true
		}
	}
	return false
}
