// Package redis implements the session store and registry on go-redis,
// supporting standalone, cluster and sentinel deployments.
package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tokengate/tokengate/pkg/logger"
)

// Config holds the Redis connection parameters. Addrs with more than one
// entry selects cluster mode; a MasterName selects sentinel mode.
type Config struct {
	Addrs      []string `json:"addrs" yaml:"addrs" mapstructure:"addrs"`
	MasterName string   `json:"master_name" yaml:"master_name" mapstructure:"master_name"`
	Password   string   `json:"password" yaml:"password" mapstructure:"password"`
	DB         int      `json:"db" yaml:"db" mapstructure:"db"`

	PoolSize     int           `json:"pool_size" yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int           `json:"min_idle_conns" yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `json:"dial_timeout" yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`
	MaxRetries   int           `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	EnableTLS     bool `json:"enable_tls" yaml:"enable_tls" mapstructure:"enable_tls"`
	TLSSkipVerify bool `json:"tls_skip_verify" yaml:"tls_skip_verify" mapstructure:"tls_skip_verify"`
}

func (c *Config) withDefaults() *Config {
	out := *c
	if len(out.Addrs) == 0 {
		out.Addrs = []string{"localhost:6379"}
	}
	if out.PoolSize <= 0 {
		out.PoolSize = 50
	}
	if out.DialTimeout <= 0 {
		out.DialTimeout = 5 * time.Second
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = 3 * time.Second
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = 3 * time.Second
	}
	return &out
}

// Connection owns the Redis client lifecycle.
type Connection struct {
	client redis.UniversalClient
	log    logger.Logger
}

// Connect builds a universal client from the config and verifies it with a
// ping before handing it out.
func Connect(ctx context.Context, cfg *Config, log logger.Logger) (*Connection, error) {
	cfg = cfg.withDefaults()

	opts := &redis.UniversalOptions{
		Addrs:        cfg.Addrs,
		MasterName:   cfg.MasterName,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxRetries:   cfg.MaxRetries,
	}
	if cfg.EnableTLS {
		opts.TLSConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: cfg.TLSSkipVerify,
		}
	}

	client := redis.NewUniversalClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	log.Info(ctx, "redis connection established",
		logger.Any("addrs", cfg.Addrs),
		logger.Int("pool_size", cfg.PoolSize),
	)
	return &Connection{client: client, log: log}, nil
}

// Client exposes the underlying universal client.
func (c *Connection) Client() redis.UniversalClient {
	return c.client
}

// Close releases the connection pool.
func (c *Connection) Close() error {
	return c.client.Close()
}
