// Package cache stores computed layouts and rendered artifacts.
//
// Layouts are deterministic for a given structure and layout options, and
// artifacts are deterministic for a given layout and render options, so both
// are safe to reuse across runs. Four backends are available:
//
//   - [FileCache] keeps entries under the user cache directory (CLI default).
//   - [NullCache] disables caching.
//   - [RedisCache] shares entries between API replicas.
//   - [MongoCache] keeps entries in a MongoDB collection with a TTL index.
//
// Keys are produced by a [Keyer] so that callers never build them by hand.
package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases connections held by the backend.
	Close() error
}

// Entry lifetimes.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendNone  = "none"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Defaults for the network backends.
const (
	DefaultRedisURL   = "redis://localhost:6379/0"
	DefaultMongoURI   = "mongodb://localhost:27017"
	DefaultDatabase   = "rnaviz"
	DefaultCollection = "cache"
)

// ErrUnknownBackend is returned by [Open] for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Options selects a backend and its connection settings.
type Options struct {
	Backend    string
	Dir        string
	RedisURL   string
	MongoURI   string
	Database   string
	Collection string
}

// Open connects to the configured backend. Empty settings fall back to the
// package defaults.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case BackendFile, "":
		dir := opts.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		c, err := NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone:
		return NewNullCache(), nil
	case BackendRedis:
		url := opts.RedisURL
		if url == "" {
			url = DefaultRedisURL
		}
		c, err := NewRedisCache(ctx, url)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		c, err := NewMongoCache(ctx, MongoOptions{
			URI:        opts.MongoURI,
			Database:   opts.Database,
			Collection: opts.Collection,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

// DefaultDir returns the per-user cache directory for the file backend.
func DefaultDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rnaviz"), nil
}
