package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	PostsCollection    = "posts"
	CommentsCollection = "comments"
	UsersCollection    = "users"
)

// EnsureIndexes creates the indexes the repositories rely on. Slug, email and
// username uniqueness are enforced here as well as in the services.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		PostsCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "author_id", Value: 1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
		},
		CommentsCollection: {
			{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "parent_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "parent_id", Value: 1}, {Key: "created_at", Value: 1}}},
			{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
