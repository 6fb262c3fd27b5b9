// Package cache provides pluggable byte caching for the dataset pipeline.
//
// The pipeline caches three kinds of values: fetched dataset rows, built
// forests, and rendered artifacts (SVG/PNG). Each kind has its own key
// schema (see [Keyer]) and default TTL. Backends range from a local file
// cache for CLI usage to Redis and MongoDB for shared deployments.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Default TTLs per value kind. Datasets are remote and may change, so they
// expire fastest; forests and artifacts are pure functions of their inputs
// and keep longer.
const (
	TTLDataset  = 24 * time.Hour
	TTLForest   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the backend-agnostic storage interface.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources (connections, file handles).
	Close() error
}

// DatasetKeyOpts captures the fetch parameters that affect dataset content.
type DatasetKeyOpts struct {
	Refresh bool // refreshed fetches are keyed separately so stale reads stay available
}

// ForestKeyOpts captures the build parameters that affect forest structure.
type ForestKeyOpts struct {
	FocusID string // non-empty when the forest is a focus subtree view
}

// ArtifactKeyOpts captures the render parameters that affect artifact bytes.
type ArtifactKeyOpts struct {
	Format   string // "dot", "svg", or "png"
	Detailed bool
}

// Keyer generates cache keys for each pipeline stage. Implementations may
// add prefixes for multi-tenant isolation (see [ScopedKeyer]).
type Keyer interface {
	// HTTPKey generates a key for raw HTTP response caching.
	HTTPKey(namespace, key string) string

	// DatasetKey generates a key for fetched-and-normalized dataset rows.
	DatasetKey(url string, opts DatasetKeyOpts) string

	// ForestKey generates a key for a built forest, keyed by the hash of
	// the dataset it was built from.
	ForestKey(datasetHash string, opts ForestKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact, keyed by the
	// hash of the forest it was rendered from.
	ArtifactKey(forestHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256 under stable prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// HTTPKey generates a key for HTTP response caching. The raw namespace and
// key stay readable so cache contents can be inspected by hand.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return fmt.Sprintf("http:%s:%s", namespace, key)
}

// DatasetKey generates a key for dataset caching.
func (k *DefaultKeyer) DatasetKey(url string, opts DatasetKeyOpts) string {
	return hashKey("dataset", url, opts)
}

// ForestKey generates a key for forest caching.
func (k *DefaultKeyer) ForestKey(datasetHash string, opts ForestKeyOpts) string {
	return hashKey("forest", datasetHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(forestHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", forestHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
