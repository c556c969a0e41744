package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kislikjeka/walletclient/internal/ledger"
	"github.com/kislikjeka/walletclient/pkg/logger"
)

const (
	// DefaultTTL is how long a fetched user directory stays fresh
	DefaultTTL = 60 * time.Second

	// DirectoryKey holds the JSON-encoded user list
	DirectoryKey = "directory:users"
)

// DirectoryCache is a Redis-backed cache of the wallet's user directory
type DirectoryCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *logger.Logger
}

// NewDirectoryCache creates a directory cache. A non-positive ttl uses DefaultTTL.
func NewDirectoryCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *DirectoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &DirectoryCache{
		client: client,
		key:    DirectoryKey,
		ttl:    ttl,
		logger: log.Component("directory_cache"),
	}
}

type cachedDirectory struct {
	Users     []ledger.User `json:"users"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// Get returns the cached users. found is false on a miss.
func (c *DirectoryCache) Get(ctx context.Context) ([]ledger.User, bool, error) {
	val, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("cache miss")
		return nil, false, nil
	}
	if err != nil {
		c.logger.Error("cache error", "operation", "get", "error", err)
		return nil, false, fmt.Errorf("failed to get cached directory: %w", err)
	}

	var cached cachedDirectory
	if err := json.Unmarshal(val, &cached); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached directory: %w", err)
	}

	c.logger.Debug("cache hit", "users", len(cached.Users), "age_ms", time.Since(cached.FetchedAt).Milliseconds())
	return cached.Users, true, nil
}

// Set stores users with the configured TTL
func (c *DirectoryCache) Set(ctx context.Context, users []ledger.User) error {
	data, err := json.Marshal(cachedDirectory{
		Users:     users,
		FetchedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal directory: %w", err)
	}

	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		c.logger.Error("cache error", "operation", "set", "error", err)
		return fmt.Errorf("failed to set cached directory: %w", err)
	}
	return nil
}

// Invalidate drops the cached directory
func (c *DirectoryCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached directory: %w", err)
	}
	return nil
}

// TTL returns the remaining lifetime of the cached directory
func (c *DirectoryCache) TTL(ctx context.Context) (time.Duration, error) {
	return c.client.TTL(ctx, c.key).Result()
}
