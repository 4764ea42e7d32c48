package wsaa

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKeyPrefix = "wsaa:ta:"

// RedisStore shares tickets between client instances through Redis. Keys
// expire together with the ticket they hold.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	now       func() time.Time
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, ""), nil
}

// NewRedisStoreWithClient creates a store with an existing Redis client
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = defaultRedisKeyPrefix
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		now:       time.Now,
	}
}

// Key returns the Redis key holding the ticket for service
func (s *RedisStore) Key(service string) string {
	return s.keyPrefix + service
}

// Load reads the stored ticket for service
func (s *RedisStore) Load(ctx context.Context, service string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.Key(service)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ticket from Redis: %w", err)
	}
	return data, nil
}

// Save stores the ticket for service until expiry
func (s *RedisStore) Save(ctx context.Context, service string, raw []byte, expiry time.Time) error {
	ttl := expiry.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.Key(service), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write ticket to Redis: %w", err)
	}
	return nil
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
