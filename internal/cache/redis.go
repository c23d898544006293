// Package cache holds the Redis-backed caches used by the API.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/devotional/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultVerseTTL is how long a verse explanation stays cached
	DefaultVerseTTL = 7 * 24 * time.Hour

	versePrefix = "devotional:verse:"
)

// NewRedisClient parses url and verifies the connection
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// VerseCache stores verse explanations keyed by the normalized verse text
type VerseCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewVerseCache creates a verse cache. A non-positive ttl uses DefaultVerseTTL.
func NewVerseCache(client redis.Cmdable, ttl time.Duration) *VerseCache {
	if ttl <= 0 {
		ttl = DefaultVerseTTL
	}
	return &VerseCache{client: client, ttl: ttl}
}

// Get returns the cached explanation for verse, if any
func (c *VerseCache) Get(ctx context.Context, verse string) (models.VerseExplanation, bool, error) {
	var exp models.VerseExplanation
	data, err := c.client.Get(ctx, VerseKey(verse)).Bytes()
	if errors.Is(err, redis.Nil) {
		return exp, false, nil
	}
	if err != nil {
		return exp, false, fmt.Errorf("failed to read verse cache: %w", err)
	}
	if err := json.Unmarshal(data, &exp); err != nil {
		return exp, false, fmt.Errorf("failed to decode cached verse: %w", err)
	}
	return exp, true, nil
}

// Set caches exp for verse
func (c *VerseCache) Set(ctx context.Context, verse string, exp models.VerseExplanation) error {
	data, err := json.Marshal(exp)
	if err != nil {
		return fmt.Errorf("failed to encode verse: %w", err)
	}
	if err := c.client.Set(ctx, VerseKey(verse), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write verse cache: %w", err)
	}
	return nil
}

// VerseKey normalizes case and whitespace so equivalent references share a key
func VerseKey(verse string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(verse), " "))
	sum := sha256.Sum256([]byte(normalized))
	return versePrefix + hex.EncodeToString(sum[:])
}
