package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/threads/internal/infrastructure/mongodb"
)

const (
	mongoCtxTimeout                = 30 * time.Second
	mongoPingTimeout               = 2 * time.Second
	mongoContainerStartupTimeout   = 90 * time.Second
	mongoContainerTerminateTimeout = 10 * time.Second
	pingRetryDelay                 = 500 * time.Millisecond
	maxPingRetries                 = 5
	maxTestNameLength              = 40
)

var (
	sharedContainer     *SharedMongoContainer
	sharedContainerOnce sync.Once
	errSharedContainer  error
)

// SharedMongoContainer represents a reusable MongoDB container for tests
type SharedMongoContainer struct {
	Container testcontainers.Container
	URI       string
}

// GetSharedMongoContainer returns a singleton MongoDB container.
// The container is started once and reused across all tests.
func GetSharedMongoContainer(ctx context.Context) (*SharedMongoContainer, error) {
	sharedContainerOnce.Do(func() {
		container, err := startMongoContainer(ctx)
		if err != nil {
			errSharedContainer = err
			return
		}
		sharedContainer = container
	})

	return sharedContainer, errSharedContainer
}

func startMongoContainer(ctx context.Context) (*SharedMongoContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        "mongo:8",
		Name:         "threads-test-mongodb",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(mongoContainerStartupTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
		Reuse:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start MongoDB container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "27017")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &SharedMongoContainer{
		Container: container,
		URI:       "mongodb://" + net.JoinHostPort(host, port.Port()),
	}, nil
}

// SetupSharedTestMongoDB creates an isolated database in the shared container.
// The test is skipped when no container runtime is available.
func SetupSharedTestMongoDB(t *testing.T) *mongo.Database {
	t.Helper()
	_, db := SetupSharedTestMongoDBWithURI(t)
	return db
}

// SetupSharedTestMongoDBWithURI is SetupSharedTestMongoDB that also returns
// the container URI, for tests that build their own mongodb.Connector.
func SetupSharedTestMongoDBWithURI(t *testing.T) (string, *mongo.Database) {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), mongoCtxTimeout)
	defer cancel()

	container, err := GetSharedMongoContainer(ctx)
	if err != nil {
		t.Fatalf("Failed to get shared MongoDB container: %v", err)
	}

	client, err := mongo.Connect(options.Client().ApplyURI(container.URI))
	if err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	for i := range maxPingRetries {
		pingCtx, pingCancel := context.WithTimeout(context.Background(), mongoPingTimeout)
		err = client.Ping(pingCtx, nil)
		pingCancel()
		if err == nil {
			break
		}
		if i < maxPingRetries-1 {
			time.Sleep(pingRetryDelay)
		}
	}
	if err != nil {
		t.Fatalf("Failed to ping MongoDB after %d retries: %v", maxPingRetries, err)
	}

	db := client.Database(GenerateTestDBName(t.Name()))
	if err = mongodb.CreateAllIndexes(ctx, db); err != nil {
		t.Fatalf("Failed to create indexes: %v", err)
	}

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), mongoCtxTimeout)
		defer cleanupCancel()
		_ = db.Drop(cleanupCtx)
		_ = client.Disconnect(cleanupCtx)
	})

	return container.URI, db
}

// GenerateTestDBName creates a unique database name from test name.
func GenerateTestDBName(testName string) string {
	name := strings.NewReplacer("/", "_", " ", "_", ".", "_", "$", "_").Replace(testName)
	if len(name) > maxTestNameLength {
		// MongoDB limits database names to 63 bytes
		hash := sha256.Sum256([]byte(name))
		name = name[:20] + "_" + hex.EncodeToString(hash[:])[:12]
	}
	return "threads_test_" + name
}

// CleanupSharedContainer terminates the shared container.
// With Reuse=true the container may persist between runs.
func CleanupSharedContainer() {
	if sharedContainer != nil && sharedContainer.Container != nil {
		ctx, cancel := context.WithTimeout(context.Background(), mongoContainerTerminateTimeout)
		defer cancel()
		_ = sharedContainer.Container.Terminate(ctx)
	}
}
