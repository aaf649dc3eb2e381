// Package cache stores placement results and rendered artifacts by content
// hash so that repeated runs over the same classroom are served without
// recomputation.
//
// # Backends
//
//   - [NullCache] never stores anything.
//   - [FileCache] keeps JSON entries under a directory, for the CLI.
//   - [RedisCache] keeps entries in Redis, for the HTTP server.
//
// # Keys
//
// A [Keyer] turns content hashes and options into cache keys. Keys change
// whenever anything that affects the cached value changes, so entries never
// need explicit invalidation.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. ok is false on a miss or an expired
	// entry.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Default entry lifetimes.
const (
	PlacementTTL = 7 * 24 * time.Hour
	ArtifactTTL  = 30 * 24 * time.Hour
)

// PlacementKeyOpts holds the run options that change a placement result.
type PlacementKeyOpts struct {
	Accept        float64 `json:"accept"`
	Candidate     float64 `json:"candidate"`
	Aggregate     float64 `json:"aggregate"`
	ClearExisting bool    `json:"clear_existing"`
}

// ArtifactKeyOpts holds the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Labels string `json:"labels,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// PlacementKey keys a placement result by the hash of its input.
	PlacementKey(inputHash string, opts PlacementKeyOpts) string
	// ArtifactKey keys a rendered artifact by the hash of its placement.
	ArtifactKey(placementHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "kind:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PlacementKey implements Keyer.
func (DefaultKeyer) PlacementKey(inputHash string, opts PlacementKeyOpts) string {
	return hashKey("placement", inputHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(placementHash string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s", opts.Format), placementHash, opts)
}

var _ Keyer = DefaultKeyer{}
