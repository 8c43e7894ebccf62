package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
	StatusArchived  PostStatus = "archived"
)

// Valid reports whether s is a known status.
func (s PostStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Post represents a blog post stored in MongoDB
type Post struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title     string             `json:"title" bson:"title"`
	Content   string             `json:"content" bson:"content"`
	Summary   string             `json:"summary" bson:"summary"`
	Tags      []string           `json:"tags" bson:"tags"`
	Slug      string             `json:"slug" bson:"slug"`
	Status    PostStatus         `json:"status" bson:"status"`
	AuthorID  string             `json:"-" bson:"author_id"` // hex id of the author
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`

	// Filled on read, never stored.
	Author        *UserPublic `json:"author,omitempty" bson:"-"`
	CommentsCount int64       `json:"comments_count" bson:"-"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title   string     `json:"title" validate:"required,min=1,max=200"`
	Content string     `json:"content" validate:"required,min=1"`
	Summary string     `json:"summary,omitempty" validate:"omitempty,max=500"`
	Tags    []string   `json:"tags,omitempty" validate:"omitempty,dive,required"`
	Slug    string     `json:"slug,omitempty" validate:"omitempty,slug"`
	Status  PostStatus `json:"status,omitempty" validate:"omitempty,oneof=draft published archived"`
}

// UpdatePostRequest defines the request body for updating an existing post.
// Only non-nil fields are applied.
type UpdatePostRequest struct {
	Title   *string     `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content *string     `json:"content,omitempty" validate:"omitempty,min=1"`
	Summary *string     `json:"summary,omitempty" validate:"omitempty,max=500"`
	Tags    []string    `json:"tags,omitempty" validate:"omitempty,dive,required"`
	Slug    *string     `json:"slug,omitempty"`
	Status  *PostStatus `json:"status,omitempty" validate:"omitempty,oneof=draft published archived"`
}

// PostChanges is the set of fields a repository update writes.
type PostChanges struct {
	Title     *string
	Content   *string
	Summary   *string
	Tags      []string
	Slug      *string
	Status    *PostStatus
	UpdatedAt time.Time
}

// PostFilters are the optional listing filters. Empty fields are ignored,
// except Status which defaults to published.
type PostFilters struct {
	Status   PostStatus
	Tag      string
	AuthorID string
}

// List is the paginated envelope returned by listing endpoints
type List[T any] struct {
	Total  int64 `json:"total"`
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
	Items  []T   `json:"items"`
}
