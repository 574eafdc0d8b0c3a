package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service stores raw response bodies by key.
type Service interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Key builds a cache key from a namespace and the request identity parts.
// Long identities are hashed so keys stay bounded.
func Key(namespace string, parts ...string) string {
	id := strings.Join(parts, "|")
	if len(id) > 120 {
		sum := sha1.Sum([]byte(id))
		id = hex.EncodeToString(sum[:])
	}
	return namespace + ":" + id
}
