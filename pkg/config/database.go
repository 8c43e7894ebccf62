package config

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/quill/backend/internal/logger"
	"github.com/anonto42/quill/backend/internal/repositories"
	"github.com/anonto42/quill/backend/internal/repositories/memory"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Storage holds the repositories of the configured driver and the client
// behind them.
type Storage struct {
	Posts    repositories.PostRepository
	Comments repositories.CommentRepository
	Users    repositories.UserRepository

	mongo *mongo.Client
}

// InitStorage connects the configured storage driver and returns its repositories.
func InitStorage(ctx context.Context, cfg *Config) (*Storage, error) {
	if cfg.StorageDriver == StorageMemory {
		logger.Info("Using in-memory storage")
		return &Storage{
			Posts:    memory.NewPostRepository(),
			Comments: memory.NewCommentRepository(),
			Users:    memory.NewUserRepository(),
		}, nil
	}

	client, err := initMongo(ctx, cfg.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	db := client.Database(cfg.MongoDatabase)
	if err := repositories.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create MongoDB indexes: %w", err)
	}

	return &Storage{
		Posts:    repositories.NewMongoPostRepository(db),
		Comments: repositories.NewMongoCommentRepository(db),
		Users:    repositories.NewMongoUserRepository(db),
		mongo:    client,
	}, nil
}

// initMongo initializes the MongoDB connection
func initMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("Successfully connected to MongoDB")
	return client, nil
}

// Ping verifies that the storage backend is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	if s.mongo == nil {
		return nil
	}
	return s.mongo.Ping(ctx, readpref.Primary())
}

// Close closes the database connections
func (s *Storage) Close(ctx context.Context) {
	if s.mongo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.mongo.Disconnect(ctx); err != nil {
		logger.Error("Error closing MongoDB connection", "error", err)
		return
	}
	logger.Info("MongoDB connection closed")
}
