package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is a user's authorization level.
type Role string

const (
	RoleUser   Role = "user"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

// User is an account stored in MongoDB
type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username  string             `json:"username" bson:"username"`
	Email     string             `json:"email" bson:"email"`
	FullName  string             `json:"full_name,omitempty" bson:"full_name,omitempty"`
	Bio       string             `json:"bio,omitempty" bson:"bio,omitempty"`
	Password  string             `json:"-" bson:"password"` // bcrypt hash, never serialized
	Role      Role               `json:"role" bson:"role"`
	IsActive  bool               `json:"is_active" bson:"is_active"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Public returns the fields that may be embedded in other resources.
func (u *User) Public() *UserPublic {
	return &UserPublic{
		ID:       u.ID.Hex(),
		Username: u.Username,
		FullName: u.FullName,
		Bio:      u.Bio,
	}
}

// Identity returns the caller identity derived from this account.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID.Hex(), Username: u.Username, Role: u.Role}
}

// UserPublic is the public profile embedded as a post or comment author.
type UserPublic struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

// UserWithStats is a public profile with activity counters
type UserWithStats struct {
	*User
	PostsCount    int64 `json:"posts_count"`
	CommentsCount int64 `json:"comments_count"`
}

// Identity is the resolved caller of a request.
type Identity struct {
	ID       string
	Username string
	Role     Role
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name,omitempty" validate:"omitempty,max=100"`
	Bio      string `json:"bio,omitempty" validate:"omitempty,max=500"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest is a partial update; nil fields are left untouched.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=100"`
	Bio      *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
	Role     *Role   `json:"role,omitempty" validate:"omitempty,oneof=user editor admin"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// UserChanges is the set of fields a repository update writes.
type UserChanges struct {
	Email     *string
	FullName  *string
	Bio       *string
	Password  *string
	Role      *Role
	IsActive  *bool
	UpdatedAt time.Time
}

// TokenResponse is returned by the login endpoint
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims.
// The user id travels in the registered Subject claim.
type JwtCustomClaims struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}
