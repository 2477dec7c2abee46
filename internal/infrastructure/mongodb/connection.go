package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/threads/internal/domain/errs"
)

const defaultConnectTimeout = 10 * time.Second

// ConnectionError reports that the document store could not be reached.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("mongodb %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Is lets callers outside the infrastructure layer match errs.ErrUnavailable.
func (e *ConnectionError) Is(target error) bool { return target == errs.ErrUnavailable }

// HTTPStatus implements httpserver.HTTPError.
func (e *ConnectionError) HTTPStatus() int { return http.StatusServiceUnavailable }

// HTTPCode implements httpserver.HTTPError.
func (e *ConnectionError) HTTPCode() string { return "SERVICE_UNAVAILABLE" }

// HTTPMessage implements httpserver.HTTPError.
func (e *ConnectionError) HTTPMessage() string { return "database is unavailable" }

// IsConnectionError reports whether err carries a ConnectionError.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// ConnectorConfig configures a Connector.
type ConnectorConfig struct {
	URI          string
	Database     string
	Timeout      time.Duration
	MaxPoolSize  uint64
	Transactions bool
}

// ConnectorOption configures optional Connector settings.
type ConnectorOption func(*Connector)

// WithConnectorLogger sets the logger.
func WithConnectorLogger(logger *slog.Logger) ConnectorOption {
	return func(c *Connector) {
		c.logger = logger
	}
}

// WithoutIndexes disables index creation on first connect.
func WithoutIndexes() ConnectorOption {
	return func(c *Connector) {
		c.skipIndexes = true
	}
}

// Connector owns the process-wide MongoDB client. The first successful
// EnsureConnected is remembered; failed attempts are retried on the next call.
type Connector struct {
	client       *mongo.Client
	db           *mongo.Database
	timeout      time.Duration
	transactions bool
	skipIndexes  bool
	logger       *slog.Logger

	mu        sync.Mutex
	connected bool
}

// NewConnector builds the client without touching the network.
func NewConnector(cfg ConnectorConfig, opts ...ConnectorOption) (*Connector, error) {
	if cfg.URI == "" {
		return nil, &ConnectionError{Op: "configure", Err: errors.New("uri is empty")}
	}
	if cfg.Database == "" {
		return nil, &ConnectionError{Op: "configure", Err: errors.New("database name is empty")}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	if cfg.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, &ConnectionError{Op: "configure", Err: err}
	}

	c := &Connector{
		client:       client,
		db:           client.Database(cfg.Database),
		timeout:      timeout,
		transactions: cfg.Transactions,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// EnsureConnected verifies the store is reachable. Concurrent callers share
// one attempt; after a success every later call returns immediately.
func (c *Connector) EnsureConnected(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.client.Ping(pingCtx, nil); err != nil {
		c.logger.ErrorContext(ctx, "mongodb connection failed", slog.String("error", err.Error()))
		return &ConnectionError{Op: "connect", Err: err}
	}

	if !c.skipIndexes {
		if err := CreateAllIndexes(ctx, c.db); err != nil {
			c.logger.ErrorContext(ctx, "mongodb index creation failed", slog.String("error", err.Error()))
			return &ConnectionError{Op: "create indexes", Err: err}
		}
	}

	c.connected = true
	c.logger.InfoContext(ctx, "connected to mongodb", slog.String("database", c.db.Name()))

	return nil
}

// IsConnected reports whether a connection attempt has succeeded.
func (c *Connector) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Ping checks liveness without changing the connected state.
func (c *Connector) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx, nil); err != nil {
		return &ConnectionError{Op: "ping", Err: err}
	}
	return nil
}

// RunInTransaction runs fn inside a multi-document transaction when
// transactions are enabled, otherwise it calls fn directly with ctx.
func (c *Connector) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !c.transactions {
		return fn(ctx)
	}

	session, err := c.client.StartSession()
	if err != nil {
		return &ConnectionError{Op: "start session", Err: err}
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx context.Context) (any, error) {
		return nil, fn(sessCtx)
	})
	return err
}

// TransactionsEnabled reports whether RunInTransaction opens real transactions.
func (c *Connector) TransactionsEnabled() bool {
	return c.transactions
}

// Database returns the application database handle.
func (c *Connector) Database() *mongo.Database {
	return c.db
}

// Client returns the underlying client.
func (c *Connector) Client() *mongo.Client {
	return c.client
}

// Close disconnects the client.
func (c *Connector) Close(ctx context.Context) error {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}
