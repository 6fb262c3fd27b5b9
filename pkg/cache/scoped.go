package cache

// ScopedKeyer wraps a Keyer with a prefix so independent deployments or
// users sharing one backend get disjoint key spaces.
//
// Example usage:
//
//	// Per-session keys for server-held datasets
//	sessionKeyer := NewScopedKeyer(NewDefaultKeyer(), "session:abc123:")
//
//	// Global keys for the shared demo dataset
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every generated key.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// DatasetKey generates a prefixed key for dataset caching.
func (k *ScopedKeyer) DatasetKey(url string, opts DatasetKeyOpts) string {
	return k.prefix + k.inner.DatasetKey(url, opts)
}

// ForestKey generates a prefixed key for forest caching.
func (k *ScopedKeyer) ForestKey(datasetHash string, opts ForestKeyOpts) string {
	return k.prefix + k.inner.ForestKey(datasetHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(forestHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(forestHash, opts)
}
