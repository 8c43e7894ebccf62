package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/quill/backend/internal/apperr"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection(PostsCollection)}
}

// CreatePost inserts a post. The unique slug index turns a lost race into ErrDuplicateSlug.
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	if post.Tags == nil {
		post.Tags = []string{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.ErrDuplicateSlug
	}
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.ErrPostNotFound
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

// GetPostBySlug retrieves a post by its URL slug
func (r *MongoPostRepository) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *MongoPostRepository) findOne(ctx context.Context, filter bson.M) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, filter).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// FindPosts returns one page of posts matching filter, newest first
func (r *MongoPostRepository) FindPosts(ctx context.Context, filter query.Filter, page query.Page) ([]models.Post, error) {
	findOptions := options.Find().
		SetSkip(page.Offset).
		SetLimit(page.Limit).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter.BSON(), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// CountPosts counts posts matching filter, ignoring pagination
func (r *MongoPostRepository) CountPosts(ctx context.Context, filter query.Filter) (int64, error) {
	return r.collection.CountDocuments(ctx, filter.BSON())
}

// UpdatePost writes the non-nil fields of changes
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id string, changes models.PostChanges) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.ErrPostNotFound
	}

	set := bson.M{"updated_at": changes.UpdatedAt}
	if changes.Title != nil {
		set["title"] = *changes.Title
	}
	if changes.Content != nil {
		set["content"] = *changes.Content
	}
	if changes.Summary != nil {
		set["summary"] = *changes.Summary
	}
	if changes.Tags != nil {
		set["tags"] = changes.Tags
	}
	if changes.Slug != nil {
		set["slug"] = *changes.Slug
	}
	if changes.Status != nil {
		set["status"] = *changes.Status
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.ErrDuplicateSlug
		}
		return fmt.Errorf("update post %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrPostNotFound
	}
	return nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
