package cache

// ScopedKeyer wraps a Keyer with a prefix, isolating one tenant's or one
// project's entries from another's in a shared backend.
//
// Example usage:
//
//	// Keys for a private registry mirror
//	mirror := NewScopedKeyer(NewDefaultKeyer(), "mirror:corp:")
//
//	// Global keys for public registries
//	global := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// VersionsKey generates a prefixed key for version lists.
func (k *ScopedKeyer) VersionsKey(registry, name string) string {
	return k.prefix + k.inner.VersionsKey(registry, name)
}

// ParseKey generates a prefixed key for parse results.
func (k *ScopedKeyer) ParseKey(parserType, contentHash string) string {
	return k.prefix + k.inner.ParseKey(parserType, contentHash)
}
