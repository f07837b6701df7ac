package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationCache is the fast-path denial store for rotated or logged-out
// refresh tokens. Keys carry a TTL matching the token's remaining lifetime,
// so entries vanish exactly when the token would have expired anyway.
// Key format: revoked:<sha256 of raw token>
type RevocationCache struct {
	client *redis.Client
}

// NewRevocationCache creates a RevocationCache wrapping the given client.
func NewRevocationCache(client *redis.Client) *RevocationCache {
	return &RevocationCache{client: client}
}

// IsRevoked reports whether the raw token has been revoked.
func (r *RevocationCache) IsRevoked(ctx context.Context, raw string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(raw)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

// Revoke records the token as revoked for ttl.
func (r *RevocationCache) Revoke(ctx context.Context, raw string, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(raw), "1", ttl).Err()
}

func (r *RevocationCache) key(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return "revoked:" + hex.EncodeToString(sum[:])
}
