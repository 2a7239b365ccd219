package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/redisclient"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.uber.org/zap"
)

var (
	// MongoDB database
	MongoDB *mongo.Database
	// Redis client
	Redis *redisclient.Client
)

// InitMongoDB connects to MongoDB and selects the configured database.
func InitMongoDB(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(AppConfig.MongoURI).
		SetMonitor(otelmongo.NewMonitor()).
		SetMaxPoolSize(50).
		SetMinPoolSize(2).
		SetMaxConnIdleTime(5 * time.Minute).
		SetServerSelectionTimeout(5 * time.Second).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("ping mongodb: %w", err)
	}

	MongoDB = client.Database(AppConfig.MongoDatabase)

	logging.Logger.Info("connected to MongoDB",
		zap.String("uri", maskMongoURI(AppConfig.MongoURI)),
		zap.String("database", AppConfig.MongoDatabase),
	)
	return nil
}

// InitRedis connects to Redis through the traced client.
func InitRedis(ctx context.Context) error {
	redisClient := redis.NewClient(&redis.Options{
		Addr:         AppConfig.RedisURI,
		Password:     AppConfig.RedisPassword,
		DB:           AppConfig.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	client := redisclient.NewClient(redisClient)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("ping redis at %s: %w", AppConfig.RedisURI, err)
	}

	Redis = client
	logging.Logger.Info("connected to Redis", zap.String("uri", AppConfig.RedisURI))
	return nil
}

// PingMongo reports whether MongoDB answers.
func PingMongo(ctx context.Context) error {
	if MongoDB == nil {
		return fmt.Errorf("mongodb not initialized")
	}
	return MongoDB.Client().Ping(ctx, readpref.Primary())
}

// PingRedis reports whether Redis answers.
func PingRedis(ctx context.Context) error {
	if Redis == nil {
		return fmt.Errorf("redis not initialized")
	}
	return Redis.Ping(ctx).Err()
}

// CloseConnections releases the shared clients.
func CloseConnections(ctx context.Context) {
	if MongoDB != nil {
		if err := MongoDB.Client().Disconnect(ctx); err != nil {
			logging.Logger.Warn("failed to disconnect MongoDB", zap.Error(err))
		}
		MongoDB = nil
	}
	if Redis != nil {
		if err := Redis.Close(); err != nil {
			logging.Logger.Warn("failed to close Redis", zap.Error(err))
		}
		Redis = nil
	}
}

// maskMongoURI hides the credentials part of a MongoDB URI.
func maskMongoURI(uri string) string {
	at := strings.LastIndex(uri, "@")
	if at < 0 {
		return uri
	}
	scheme := "mongodb://"
	if i := strings.Index(uri, "://"); i >= 0 {
		scheme = uri[:i+3]
	}
	return scheme + "****:****@" + uri[at+1:]
}
