// Package redisclient wraps the Redis features the engine uses: a
// per-user lock around the check-in read-modify-write section, and a
// fast-path flag for "already checked in today". Both are optimizations;
// the store's uniqueness constraint stays the final arbiter.
package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// AcquireCheckinLock takes the per-user check-in lock. Returns false
// when another instance holds it.
func (c *Client) AcquireCheckinLock(ctx context.Context, userID int64, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:checkin:%d", userID), "1", ttl).Result()
}

// ReleaseCheckinLock releases the per-user check-in lock
func (c *Client) ReleaseCheckinLock(ctx context.Context, userID int64) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:checkin:%d", userID)).Err()
}

// MarkCheckedIn flags a user as checked in for the given date
func (c *Client) MarkCheckedIn(ctx context.Context, userID int64, date string, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("checkin:%d:%s", userID, date), "1", ttl).Err()
}

// WasCheckedIn reports whether the checked-in flag exists for the date
func (c *Client) WasCheckedIn(ctx context.Context, userID int64, date string) (bool, error) {
	result, err := c.rdb.Exists(ctx, fmt.Sprintf("checkin:%d:%s", userID, date)).Result()
	if err != nil {
		return false, err
	}
	return result > 0, nil
}
