package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Threads_Backend/internal/config"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectDB opens a client, pings the primary and returns the configured database.
func ConnectDB(cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logrus.WithField("database", cfg.DBName).Info("Connected to MongoDB")
	return client.Database(cfg.DBName), nil
}

// EnsureIndexes creates the indexes the repositories rely on. It is safe to
// call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	users := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_username"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
		{
			Keys:    bson.D{{Key: "reset_token_hash", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("reset_token_hash"),
		},
		{
			Keys:    bson.D{{Key: "is_verified", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("verified_created_at"),
		},
	}
	if _, err := db.Collection("users").Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	sessions := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("expires_at"),
		},
	}
	if _, err := db.Collection("sessions").Indexes().CreateMany(ctx, sessions); err != nil {
		return fmt.Errorf("failed to create session indexes: %w", err)
	}

	intents := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("status_created_at"),
		},
	}
	if _, err := db.Collection("follow_intents").Indexes().CreateMany(ctx, intents); err != nil {
		return fmt.Errorf("failed to create follow intent indexes: %w", err)
	}

	logrus.Info("MongoDB indexes ensured")
	return nil
}

// Ping checks that the primary is reachable.
func Ping(ctx context.Context, db *mongo.Database) error {
	return db.Client().Ping(ctx, readpref.Primary())
}
