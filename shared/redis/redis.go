package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the connection settings for the identity store backend
type RedisConfig struct {
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int
}

// Addr returns the host:port address for the redis client
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// Redis wraps the go-redis client connection
type Redis struct {
	conn *redis.Client
}

// NewRedis creates a new redis connection from configuration
func NewRedis(cfg RedisConfig) *Redis {
	conn := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return &Redis{conn: conn}
}

// HealthCheck pings the backing redis
func (r *Redis) HealthCheck(ctx context.Context) error {
	return r.conn.Ping(ctx).Err()
}

// GetClient exposes the underlying client for store construction
func (r *Redis) GetClient() *redis.Client {
	return r.conn
}

// Close closes the connection
func (r *Redis) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// IsConnected reports whether the connection is usable
func (r *Redis) IsConnected(ctx context.Context) bool {
	if r.conn == nil {
		return false
	}
	return r.conn.Ping(ctx).Err() == nil
}
