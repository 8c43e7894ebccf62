package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a node in a post's comment forest. Roots have a nil ParentID.
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PostID    string             `json:"post_id" bson:"post_id"`
	ParentID  *string            `json:"parent_id" bson:"parent_id"` // stored as null for roots
	AuthorID  string             `json:"-" bson:"author_id"`
	Content   string             `json:"content" bson:"content"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`

	// Filled on read, never stored.
	Author    *UserPublic `json:"author,omitempty" bson:"-"`
	Replies   []*Comment  `json:"replies,omitempty" bson:"-"`
	PostTitle string      `json:"post_title,omitempty" bson:"-"`
}

// IsRoot reports whether the comment has no parent comment.
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	PostID   string  `json:"post_id" validate:"required"`
	ParentID *string `json:"parent_id,omitempty"`
	Content  string  `json:"content" validate:"required,min=1"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}
