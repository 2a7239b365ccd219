// Package testutil starts throwaway backing services for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/bizlab-kr/leadbot/internal/redisclient"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func skipIfUnavailable(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

// Redis returns a client for an isolated Redis. REDIS_ADDR points at an existing server;
// otherwise a container is started and terminated with the test.
func Redis(t *testing.T) *redisclient.Client {
	t.Helper()
	ctx := context.Background()

	var opts *goredis.Options
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		opts = &goredis.Options{Addr: addr, DB: 15}
	} else {
		skipIfUnavailable(t)

		container, err := redis.Run(ctx, "redis:7-alpine")
		testcontainers.CleanupContainer(t, container)
		require.NoError(t, err, "Failed to start Redis container")

		uri, err := container.ConnectionString(ctx)
		require.NoError(t, err, "Failed to get Redis connection string")

		opts, err = goredis.ParseURL(uri)
		require.NoError(t, err)
	}

	raw := goredis.NewClient(opts)
	client := redisclient.NewClient(raw)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(pingCtx).Err(), "Failed to ping Redis")
	require.NoError(t, raw.FlushDB(ctx).Err())

	t.Cleanup(func() { _ = client.Close() })
	return client
}

// Mongo returns a fresh database on a MongoDB container. MONGODB_URI points at an
// existing server instead.
func Mongo(t *testing.T) *mongo.Database {
	t.Helper()
	ctx := context.Background()

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		skipIfUnavailable(t)

		container, err := mongodb.Run(ctx, "mongo:7.0")
		testcontainers.CleanupContainer(t, container)
		require.NoError(t, err, "Failed to start MongoDB container")

		uri, err = container.ConnectionString(ctx)
		require.NoError(t, err, "Failed to get MongoDB connection string")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err, "Failed to connect to MongoDB")
	require.NoError(t, client.Ping(ctx, nil), "Failed to ping MongoDB")

	db := client.Database(fmt.Sprintf("leadbot_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

