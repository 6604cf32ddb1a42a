package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/eventreport/pkg/config"
)

// Client is the optional shared store behind the Yahoo price-fetch limiter.
// api/scheduler 프로세스가 같은 호출 한도를 나눠 쓸 때만 켠다 (REDIS_ENABLED).
// ⭐ SSOT: Redis 연결은 여기서만
type Client struct {
	rdb  *redis.Client
	addr string
}

// Options maps the Redis config to go-redis options.
// 리밋 스크립트는 요청마다 실행되므로 타임아웃은 짧게
func Options(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		PoolSize:     8,
	}
}

// New connects when cfg.Enabled; otherwise it returns a disabled client and
// callers fall back to the in-process limiter.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{}, nil
	}

	opts := Options(cfg)
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", opts.Addr, err)
	}

	return &Client{rdb: rdb, addr: opts.Addr}, nil
}

// Enabled reports whether limiter state is shared through Redis
func (c *Client) Enabled() bool {
	return c.rdb != nil
}

// Addr returns host:port ("" when disabled)
func (c *Client) Addr() string {
	return c.addr
}

// Ping checks the connection; a disabled client is always healthy
func (c *Client) Ping(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Scripter returns the script runner for the limiter (nil when disabled)
func (c *Client) Scripter() redis.Scripter {
	if c.rdb == nil {
		return nil
	}
	return c.rdb
}

// Close closes the connection
func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
