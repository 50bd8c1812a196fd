// Package cache provides a Redis-backed cache in front of an embedding provider.
package cache

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/tutor-backend/pkg/floatvec"
)

// flightTimeout bounds a shared embedding computation once it no longer
// follows the context of the caller that started it.
const flightTimeout = 30 * time.Second

// ---------------------------------------------------------------------------
// Consumer-defined interfaces
// ---------------------------------------------------------------------------

type redisClient interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Ping(ctx context.Context) *goredis.StatusCmd
}

type embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dimension() int
}

// ---------------------------------------------------------------------------
// EmbeddingCache
// ---------------------------------------------------------------------------

// EmbeddingCache wraps an embedder and stores its vectors in Redis keyed by a
// digest of the text. Redis failures are logged and bypassed; they never fail
// an embedding. Concurrent misses for the same text share one computation.
type EmbeddingCache struct {
	rdb    redisClient
	inner  embedder
	ttl    time.Duration
	prefix string
	log    *slog.Logger
	group  singleflight.Group
}

// NewEmbeddingCache creates an EmbeddingCache.
func NewEmbeddingCache(log *slog.Logger, rdb redisClient, inner embedder, ttl time.Duration, prefix string) *EmbeddingCache {
	return &EmbeddingCache{
		rdb:    rdb,
		inner:  inner,
		ttl:    ttl,
		prefix: prefix,
		log:    log.With("adapter", "embedding_cache"),
	}
}

// Dimension returns the wrapped embedder's dimension.
func (c *EmbeddingCache) Dimension() int { return c.inner.Dimension() }

// Embed returns the cached vector for text, computing and storing it on a miss.
func (c *EmbeddingCache) Embed(ctx context.Context, text string) ([]float64, error) {
	key := c.key(text)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if v, err := floatvec.Decode(raw); err == nil && len(v) == c.inner.Dimension() {
			return v, nil
		}
		c.log.WarnContext(ctx, "discarding malformed cached embedding", slog.String("key", key))
	case errors.Is(err, goredis.Nil):
	default:
		c.log.WarnContext(ctx, "embedding cache get failed", slog.String("error", err.Error()))
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// The flight outlives any single caller; each caller waits on its own ctx below.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
		defer cancel()

		v, err := c.inner.Embed(fctx, text)
		if err != nil {
			return nil, err
		}
		if err := c.rdb.Set(fctx, key, floatvec.Encode(v), c.ttl).Err(); err != nil {
			c.log.WarnContext(fctx, "embedding cache set failed", slog.String("error", err.Error()))
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// Callers sharing a flight must not share the slice.
		return slices.Clone(res.Val.([]float64)), nil
	}
}

// Ping checks the Redis connection.
func (c *EmbeddingCache) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// key includes the dimension so that changing the embedder invalidates old entries.
func (c *EmbeddingCache) key(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return c.prefix + strconv.Itoa(c.inner.Dimension()) + ":" + hex.EncodeToString(sum[:])
}
