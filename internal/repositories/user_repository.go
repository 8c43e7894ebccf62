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

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection(UsersCollection)}
}

// CreateUser inserts a user. Unique indexes on email and username reject duplicates.
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: email or username already registered", apperr.ErrInvalidInput)
	}
	return err
}

// GetUserByID retrieves a user by ID
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

// GetUserByEmail retrieves a user by email
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetUserByUsername retrieves a user by username
func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUsers returns one page of users matching filter, oldest first
func (r *MongoUserRepository) FindUsers(ctx context.Context, filter query.Filter, page query.Page) ([]models.User, error) {
	findOptions := options.Find().SetSkip(page.Offset).SetLimit(page.Limit).SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter.BSON(), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser writes the non-nil fields of changes
func (r *MongoUserRepository) UpdateUser(ctx context.Context, id string, changes models.UserChanges) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.ErrUserNotFound
	}

	set := bson.M{"updated_at": changes.UpdatedAt}
	if changes.Email != nil {
		set["email"] = *changes.Email
	}
	if changes.FullName != nil {
		set["full_name"] = *changes.FullName
	}
	if changes.Bio != nil {
		set["bio"] = *changes.Bio
	}
	if changes.Password != nil {
		set["password"] = *changes.Password
	}
	if changes.Role != nil {
		set["role"] = *changes.Role
	}
	if changes.IsActive != nil {
		set["is_active"] = *changes.IsActive
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.ErrEmailTaken
		}
		return fmt.Errorf("update user %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrUserNotFound
	}
	return nil
}

// DeleteUser deletes a user by ID
func (r *MongoUserRepository) DeleteUser(ctx context.Context, id string) (bool, error) {
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
