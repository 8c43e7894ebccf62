package repositories

import (
	"context"
	"time"

	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/query"
)

// SortOrder is the created_at ordering of a listing.
type SortOrder int

const (
	NewestFirst SortOrder = -1
	OldestFirst SortOrder = 1
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	FindPosts(ctx context.Context, filter query.Filter, page query.Page) ([]models.Post, error)
	CountPosts(ctx context.Context, filter query.Filter) (int64, error)
	UpdatePost(ctx context.Context, id string, changes models.PostChanges) error
	// DeletePost reports whether a document was removed.
	DeletePost(ctx context.Context, id string) (bool, error)
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	FindComments(ctx context.Context, filter query.Filter, page query.Page, order SortOrder) ([]models.Comment, error)
	// FindReplies returns the direct replies of parentID, oldest first.
	FindReplies(ctx context.Context, parentID string) ([]models.Comment, error)
	// FindReplyIDs returns the ids of the direct replies of parentID.
	FindReplyIDs(ctx context.Context, parentID string) ([]string, error)
	CountComments(ctx context.Context, filter query.Filter) (int64, error)
	UpdateCommentContent(ctx context.Context, id, content string, updatedAt time.Time) error
	// DeleteComment reports whether a document was removed.
	DeleteComment(ctx context.Context, id string) (bool, error)
	DeleteCommentsByPost(ctx context.Context, postID string) (int64, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUsers(ctx context.Context, filter query.Filter, page query.Page) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, changes models.UserChanges) error
	// DeleteUser reports whether a document was removed.
	DeleteUser(ctx context.Context, id string) (bool, error)
}

var (
	_ PostRepository    = (*MongoPostRepository)(nil)
	_ CommentRepository = (*MongoCommentRepository)(nil)
	_ UserRepository    = (*MongoUserRepository)(nil)
)
