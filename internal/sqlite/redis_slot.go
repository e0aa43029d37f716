package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/mesh-intelligence/notereel/pkg/types"
)

// RedisSlot stores snapshots as plain redis string values.
type RedisSlot struct {
	client *redis.Client
}

// NewRedisSlot wraps an existing client.
func NewRedisSlot(client *redis.Client) *RedisSlot {
	return &RedisSlot{client: client}
}

// DialRedisSlot connects to addr and verifies the connection with PING.
func DialRedisSlot(ctx context.Context, addr string) (*RedisSlot, error) {
	if addr == "" {
		return nil, types.ErrRedisAddrEmpty
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisSlot{client: client}, nil
}

// Get fetches key. A missing key is reported as not found.
func (s *RedisSlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading slot %s: %w", key, err)
	}
	return data, true, nil
}

// Put sets key without expiry. An OOM reply from the server maps to
// types.ErrQuotaExceeded.
func (s *RedisSlot) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		if isRedisOOM(err) {
			return fmt.Errorf("%w: %w", types.ErrQuotaExceeded, err)
		}
		return fmt.Errorf("writing slot %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *RedisSlot) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("deleting slot %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisSlot) Close() error {
	return s.client.Close()
}

func isRedisOOM(err error) bool {
	var rerr redis.Error
	if errors.As(err, &rerr) {
		return strings.HasPrefix(rerr.Error(), "OOM")
	}
	return false
}
