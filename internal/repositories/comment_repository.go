package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/quill/backend/internal/apperr"
	"github.com/anonto42/quill/backend/internal/metrics"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection(CommentsCollection)}
}

// CreateComment inserts a comment in MongoDB
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

// GetCommentByID retrieves a comment by ID from MongoDB
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.ErrCommentNotFound
	}

	var comment models.Comment
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// FindComments returns one page of comments matching filter
func (r *MongoCommentRepository) FindComments(ctx context.Context, filter query.Filter, page query.Page, order SortOrder) ([]models.Comment, error) {
	findOptions := options.Find().
		SetSkip(page.Offset).
		SetLimit(page.Limit).
		SetSort(bson.D{{Key: "created_at", Value: int(order)}, {Key: "_id", Value: int(order)}})
	return r.find(ctx, filter.BSON(), findOptions)
}

// FindReplies returns the direct replies of parentID, oldest first
func (r *MongoCommentRepository) FindReplies(ctx context.Context, parentID string) ([]models.Comment, error) {
	defer metrics.ObserveStorage(CommentsCollection, "find_replies")()
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"parent_id": parentID}, findOptions)
}

// FindReplyIDs returns only the ids of the direct replies of parentID
func (r *MongoCommentRepository) FindReplyIDs(ctx context.Context, parentID string) ([]string, error) {
	defer metrics.ObserveStorage(CommentsCollection, "find_reply_ids")()
	findOptions := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"parent_id": parentID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID.Hex())
	}
	return ids, cursor.Err()
}

func (r *MongoCommentRepository) find(ctx context.Context, filter any, opts *options.FindOptions) ([]models.Comment, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CountComments counts comments matching filter
func (r *MongoCommentRepository) CountComments(ctx context.Context, filter query.Filter) (int64, error) {
	return r.collection.CountDocuments(ctx, filter.BSON())
}

// UpdateCommentContent sets content and updated_at
func (r *MongoCommentRepository) UpdateCommentContent(ctx context.Context, id, content string, updatedAt time.Time) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.ErrCommentNotFound
	}

	update := bson.M{"$set": bson.M{"content": content, "updated_at": updatedAt}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("update comment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrCommentNotFound
	}
	return nil
}

// DeleteComment deletes a single comment by ID from MongoDB
func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	defer metrics.ObserveStorage(CommentsCollection, "delete_one")()
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// DeleteCommentsByPost deletes every comment referencing postID
func (r *MongoCommentRepository) DeleteCommentsByPost(ctx context.Context, postID string) (int64, error) {
	defer metrics.ObserveStorage(CommentsCollection, "delete_by_post")()
	res, err := r.collection.DeleteMany(ctx, bson.M{"post_id": postID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
