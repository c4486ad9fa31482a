// Package local provides browser-local key/value storage. Each browser owns a
// private namespace of string keys, mirroring what the dashboard pages keep
// in the browser's localStorage.
package local

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Storage is the key/value storage of a single browser.
type Storage interface {
	// GetItem retrieves the value of key. The second return value is false if
	// key is not set.
	GetItem(context.Context, string) (string, bool, error)
	SetItem(context.Context, string, string) error
	RemoveItem(context.Context, string) error
}

// NewManager creates a new Manager instance. Every write extends the
// lifetime of the browser's namespace to exp.
func NewManager(redis *redis.Client, exp time.Duration) *Manager {
	return &Manager{redis: redis, exp: exp}
}

// Manager manages browser-local storage in Redis. A browser's items are held
// in a single Redis hash.
type Manager struct {
	redis *redis.Client
	exp   time.Duration
}

// Storage retrieves the Storage of the browser identified by browserID.
func (m Manager) Storage(browserID string) Storage {
	return redisStorage{manager: m, key: keygen(browserID)}
}

type redisStorage struct {
	manager Manager
	key     string
}

func (s redisStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := s.manager.redis.HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get item; key: %s, error: %w", key, err)
	}
	return value, true, nil
}

func (s redisStorage) SetItem(ctx context.Context, key, value string) error {
	_, err := s.manager.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key, key, value)
		pipe.Expire(ctx, s.key, s.manager.exp)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set item; key: %s, error: %w", key, err)
	}
	return nil
}

func (s redisStorage) RemoveItem(ctx context.Context, key string) error {
	if err := s.manager.redis.HDel(ctx, s.key, key).Err(); err != nil {
		return fmt.Errorf("remove item; key: %s, error: %w", key, err)
	}
	return nil
}

// --- helpers ---

const prefix = "ampcal-local-"

func keygen(browserID string) string {
	return fmt.Sprintf("%s%s", prefix, browserID)
}
