// Package main provides the API server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/lllypuk/threads/internal/application/appcore"
	threadapp "github.com/lllypuk/threads/internal/application/thread"
	userapp "github.com/lllypuk/threads/internal/application/user"
	"github.com/lllypuk/threads/internal/config"
	httphandler "github.com/lllypuk/threads/internal/handler/http"
	"github.com/lllypuk/threads/internal/infrastructure/healthcheck"
	"github.com/lllypuk/threads/internal/infrastructure/httpserver"
	"github.com/lllypuk/threads/internal/infrastructure/metrics"
	mongodbinfra "github.com/lllypuk/threads/internal/infrastructure/mongodb"
	"github.com/lllypuk/threads/internal/infrastructure/repository/mongodb"
	"github.com/lllypuk/threads/internal/infrastructure/revalidate"
	"github.com/lllypuk/threads/internal/middleware"
)

// Container timeouts.
const (
	redisPingTimeout       = 5 * time.Second
	mongoDisconnectTimeout = 10 * time.Second
	healthCheckTimeout     = 3 * time.Second
)

// Container holds all application dependencies and manages their lifecycle.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	Connector   *mongodbinfra.Connector
	Redis       *redis.Client
	Registry    *prometheus.Registry
	Metrics     *metrics.OperationMetrics
	Revalidator appcore.Revalidator

	// Repositories
	ThreadRepo *mongodb.MongoThreadRepository
	UserRepo   *mongodb.MongoUserRepository

	// Services
	ThreadService *threadapp.Service
	UserService   *userapp.Service

	// HTTP
	ThreadHandler  *httphandler.ThreadHandler
	UserHandler    *httphandler.UserHandler
	RateLimitStore middleware.RateLimitStore
	Health         *httpserver.ComponentChecker
}

// Ensure Container implements httpserver.HealthChecker.
var _ httpserver.HealthChecker = (*Container)(nil)

// ContainerOption configures the Container.
type ContainerOption func(*Container)

// WithLogger sets a custom logger for the container.
func WithLogger(logger *slog.Logger) ContainerOption {
	return func(c *Container) {
		c.Logger = logger
	}
}

// WithRedisClient supplies a ready Redis client instead of dialing redis.addr.
func WithRedisClient(client *redis.Client) ContainerOption {
	return func(c *Container) {
		c.Redis = client
	}
}

// NewContainer wires the application. MongoDB is not contacted here: the
// connector connects lazily on the first operation. Redis is optional; without
// it revalidation is a no-op and rate limit counters stay in memory.
func NewContainer(cfg *config.Config, opts ...ContainerOption) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	if err := c.setupInfrastructure(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to setup infrastructure: %w", err)
	}

	c.setupRepositories()
	c.setupServices()
	c.setupHTTP()

	return c, nil
}

func (c *Container) setupInfrastructure() error {
	connector, err := mongodbinfra.NewConnector(mongodbinfra.ConnectorConfig{
		URI:          c.Config.MongoDB.URI,
		Database:     c.Config.MongoDB.Database,
		Timeout:      c.Config.MongoDB.Timeout,
		MaxPoolSize:  c.Config.MongoDB.MaxPoolSize,
		Transactions: c.Config.MongoDB.Transactions,
	}, mongodbinfra.WithConnectorLogger(c.Logger))
	if err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}
	c.Connector = connector

	c.setupRedis()

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.NewOperationMetrics(c.Registry)

	c.setupRevalidator()

	return nil
}

// setupRedis creates the client. An unreachable server is logged, not fatal:
// revalidation and rate limiting degrade gracefully.
func (c *Container) setupRedis() {
	if c.Redis == nil {
		if c.Config.Redis.Addr == "" {
			c.Logger.Info("redis not configured")
			return
		}
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     c.Config.Redis.Addr,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
			PoolSize: c.Config.Redis.PoolSize,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := c.Redis.Ping(ctx).Err(); err != nil {
		c.Logger.WarnContext(ctx, "redis is not reachable",
			slog.String("addr", c.Redis.Options().Addr),
			slog.String("error", err.Error()),
		)
		return
	}

	c.Logger.InfoContext(ctx, "connected to Redis", slog.String("addr", c.Redis.Options().Addr))
}

func (c *Container) setupRevalidator() {
	if c.Config.Revalidation.Type == config.RevalidationRedis && c.Redis != nil {
		c.Revalidator = revalidate.NewRedisRevalidator(c.Redis,
			revalidate.WithLogger(c.Logger),
			revalidate.WithChannel(c.Config.Revalidation.Channel),
			revalidate.WithCachePrefix(c.Config.Revalidation.CachePrefix),
		)
		return
	}
	c.Revalidator = revalidate.NewNoopRevalidator(c.Logger)
}

func (c *Container) setupRepositories() {
	db := c.Connector.Database()

	c.ThreadRepo = mongodb.NewMongoThreadRepository(
		db.Collection(mongodbinfra.CollectionThreads),
		mongodb.WithThreadRepoLogger(c.Logger),
	)
	c.UserRepo = mongodb.NewMongoUserRepository(
		db.Collection(mongodbinfra.CollectionUsers),
		mongodb.WithUserRepoLogger(c.Logger),
	)
}

func (c *Container) setupServices() {
	c.ThreadService = threadapp.NewService(
		c.Connector,
		c.ThreadRepo,
		c.UserRepo,
		c.Revalidator,
		threadapp.WithLogger(c.Logger),
		threadapp.WithObserver(c.Metrics),
		threadapp.WithSettings(threadSettings(c.Config.Feed)),
	)

	c.UserService = userapp.NewService(
		c.Connector,
		c.UserRepo,
		c.Revalidator,
		userapp.WithLogger(c.Logger),
		userapp.WithObserver(c.Metrics),
		userapp.WithProfileEditPath(c.Config.Revalidation.ProfileEditPath),
	)
}

// threadSettings maps the feed section onto service settings.
func threadSettings(feed config.FeedConfig) threadapp.Settings {
	settings := threadapp.DefaultSettings()
	if feed.DefaultPageSize > 0 {
		settings.DefaultPageSize = feed.DefaultPageSize
	}
	if feed.MaxPageSize > 0 {
		settings.MaxPageSize = feed.MaxPageSize
	}
	settings.Depth = feed.ThreadDepth
	settings.MaxDepth = config.MaxThreadDepth
	settings.LinkRepliesToAuthor = feed.LinkRepliesToAuthor
	return settings
}

func (c *Container) setupHTTP() {
	c.ThreadHandler = httphandler.NewThreadHandler(c.ThreadService)
	c.UserHandler = httphandler.NewUserHandler(c.UserService)

	if c.Config.RateLimit.Enabled {
		if c.Redis != nil {
			c.RateLimitStore = middleware.NewRedisRateLimitStore(c.Redis, "")
		} else {
			c.RateLimitStore = middleware.NewMemoryRateLimitStore()
		}
	}

	components := []httpserver.Component{
		{Checker: healthcheck.NewMongoDBChecker(c.Connector, c.ThreadRepo)},
	}
	if c.Redis != nil {
		components = append(components, httpserver.Component{
			Checker:  healthcheck.NewRedisChecker(c.Redis),
			Optional: true,
		})
	}
	c.Health = httpserver.NewComponentChecker(healthCheckTimeout, components...)
}

// Warmup attempts the first store connection so index creation does not
// land on a user request. Failure is logged; operations retry on their own.
func (c *Container) Warmup(ctx context.Context) {
	if err := c.Connector.EnsureConnected(ctx); err != nil {
		c.Logger.WarnContext(ctx, "mongodb not reachable at startup, will retry on demand",
			slog.String("error", err.Error()),
		)
	}
}

// IsReady implements httpserver.HealthChecker.
func (c *Container) IsReady(ctx context.Context) bool {
	if c.Health == nil {
		return false
	}
	return c.Health.IsReady(ctx)
}

// GetHealthStatus implements httpserver.HealthChecker.
func (c *Container) GetHealthStatus(ctx context.Context) []httpserver.ComponentStatus {
	if c.Health == nil {
		return nil
	}
	return c.Health.GetHealthStatus(ctx)
}

// Close releases the store and Redis clients.
func (c *Container) Close() error {
	c.Logger.Info("closing container resources...")

	var errs []error

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		} else {
			c.Logger.Debug("redis connection closed")
		}
	}

	if c.Connector != nil {
		ctx, cancel := context.WithTimeout(context.Background(), mongoDisconnectTimeout)
		defer cancel()

		if err := c.Connector.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongodb disconnect: %w", err))
		} else {
			c.Logger.Debug("mongodb connection closed")
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.Logger.Info("all container resources closed")
	return nil
}
