// Package redis builds the Redis client used by the template store.
package redis

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"biogate/internal/platform/config"
)

// Client wraps the go-redis client with health checking and pool metrics.
type Client struct {
	*redis.Client
}

// New connects to cfg.URL and pings it.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health checks if the Redis connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.Client.Close()
}

// RegisterMetrics exports pool statistics to reg. Values are read from the
// pool at scrape time.
func (c *Client) RegisterMetrics(reg prometheus.Registerer) error {
	return reg.Register(newPoolCollector(c.Client))
}

type poolStatter interface {
	PoolStats() *redis.PoolStats
}

// poolCollector reports redis.PoolStats. The pool's counters are cumulative,
// so they map directly onto Prometheus counters.
type poolCollector struct {
	pool poolStatter

	hits       *prometheus.Desc
	misses     *prometheus.Desc
	timeouts   *prometheus.Desc
	staleConns *prometheus.Desc
	totalConns *prometheus.Desc
	idleConns  *prometheus.Desc
}

func newPoolCollector(pool poolStatter) *poolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("biogate_redis_pool_"+name, help, nil, nil)
	}
	return &poolCollector{
		pool:       pool,
		hits:       desc("hits_total", "Number of times a connection was found in the pool"),
		misses:     desc("misses_total", "Number of times a connection was not found in the pool"),
		timeouts:   desc("timeouts_total", "Number of times a connection was not obtained due to timeout"),
		staleConns: desc("stale_conns_total", "Number of stale connections removed from the pool"),
		totalConns: desc("total_conns", "Number of total connections in the pool"),
		idleConns:  desc("idle_conns", "Number of idle connections in the pool"),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.timeouts
	ch <- c.staleConns
	ch <- c.totalConns
	ch <- c.idleConns
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool.PoolStats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.timeouts, prometheus.CounterValue, float64(s.Timeouts))
	ch <- prometheus.MustNewConstMetric(c.staleConns, prometheus.CounterValue, float64(s.StaleConns))
	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, float64(s.TotalConns))
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(s.IdleConns))
}
