// Package healthcheck provides appcore.HealthChecker implementations for
// the backing services.
package healthcheck

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lllypuk/threads/internal/application/appcore"
)

// Pinger is satisfied by mongodb.Connector.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ThreadCounter is satisfied by the MongoDB thread repository.
type ThreadCounter interface {
	CountTopLevel(ctx context.Context) (int, error)
}

// MongoDBChecker checks that the document store answers pings.
type MongoDBChecker struct {
	pinger  Pinger
	threads ThreadCounter
}

// NewMongoDBChecker creates a MongoDB health checker. threads may be nil;
// when set, the number of top-level threads is reported in the details.
func NewMongoDBChecker(pinger Pinger, threads ThreadCounter) *MongoDBChecker {
	return &MongoDBChecker{pinger: pinger, threads: threads}
}

// Name returns the name of this health checker.
func (c *MongoDBChecker) Name() string {
	return "mongodb"
}

// Check performs the health check.
func (c *MongoDBChecker) Check(ctx context.Context) appcore.HealthStatus {
	start := time.Now()
	if err := c.pinger.Ping(ctx); err != nil {
		return appcore.Unhealthy(fmt.Sprintf("mongodb ping failed: %v", err))
	}

	details := map[string]any{
		"latency_ms": time.Since(start).Milliseconds(),
	}
	if c.threads != nil {
		if count, err := c.threads.CountTopLevel(ctx); err == nil {
			details["top_level_threads"] = count
		}
	}

	return appcore.Healthy("mongodb is reachable", details)
}

// RedisChecker checks the revalidation transport.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Name returns the name of this health checker.
func (c *RedisChecker) Name() string {
	return "redis"
}

// Check performs the health check.
func (c *RedisChecker) Check(ctx context.Context) appcore.HealthStatus {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return appcore.Unhealthy(fmt.Sprintf("redis ping failed: %v", err))
	}

	return appcore.Healthy("redis is reachable", nil)
}
