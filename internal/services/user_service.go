package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anonto42/quill/backend/internal/apperr"
	"github.com/anonto42/quill/backend/internal/auth"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/policy"
	"github.com/anonto42/quill/backend/internal/query"
	"github.com/anonto42/quill/backend/internal/repositories"
)

// ActivityCounter counts what a user has written.
type ActivityCounter interface {
	CountByAuthor(ctx context.Context, authorID string) (int64, error)
}

// UserService handles registration, login and account management.
type UserService struct {
	users    repositories.UserRepository
	tokens   *auth.TokenManager
	posts    ActivityCounter
	comments ActivityCounter
	now      func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(users repositories.UserRepository, tokens *auth.TokenManager, posts, comments ActivityCounter) *UserService {
	return &UserService{
		users:    users,
		tokens:   tokens,
		posts:    posts,
		comments: comments,
		now:      now,
	}
}

// Register creates an active account with the user role.
func (s *UserService) Register(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.ensureFree(ctx, email, req.Username); err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	ts := s.now()
	user := &models.User{
		Username:  req.Username,
		Email:     email,
		FullName:  req.FullName,
		Bio:       req.Bio,
		Password:  hashed,
		Role:      models.RoleUser,
		IsActive:  true,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ensureFree(ctx context.Context, email, username string) error {
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return apperr.ErrEmailTaken
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return apperr.ErrUsernameTaken
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return nil
}

// Login checks credentials and returns a signed access token.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, apperr.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperr.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &models.TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// GetByID returns a user account
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// List returns one page of users, optionally restricted to one role.
func (s *UserService) List(ctx context.Context, role models.Role, page query.Page) ([]models.User, error) {
	if role != "" && !role.Valid() {
		return nil, apperr.ErrInvalidRole
	}
	return s.users.FindUsers(ctx, query.NewFilter().Eq("role", string(role)), page)
}

// Stats returns a user together with their post and comment counts.
func (s *UserService) Stats(ctx context.Context, id string) (*models.UserWithStats, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.CountByAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.CountByAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.UserWithStats{User: user, PostsCount: posts, CommentsCount: comments}, nil
}

// UpdateSelf applies a self-service profile update. Role and account
// status can never be changed this way.
func (s *UserService) UpdateSelf(ctx context.Context, actor models.Identity, req models.UpdateUserRequest) (*models.User, error) {
	if req.Role != nil && !policy.CanChangeOwnRole(actor) {
		return nil, apperr.Forbiddenf("not allowed to change your own role")
	}
	if req.IsActive != nil {
		return nil, apperr.Forbiddenf("not allowed to change your own account status")
	}
	return s.update(ctx, actor.ID, req)
}

// Update applies an administrative update to any account.
func (s *UserService) Update(ctx context.Context, actor models.Identity, id string, req models.UpdateUserRequest) (*models.User, error) {
	if !policy.CanManageUsers(actor) {
		return nil, apperr.Forbiddenf("the user doesn't have enough privileges")
	}
	return s.update(ctx, id, req)
}

func (s *UserService) update(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error) {
	if req.Role != nil && !req.Role.Valid() {
		return nil, apperr.ErrInvalidRole
	}

	changes := models.UserChanges{
		FullName:  req.FullName,
		Bio:       req.Bio,
		Role:      req.Role,
		IsActive:  req.IsActive,
		UpdatedAt: s.now(),
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		existing, err := s.users.GetUserByEmail(ctx, email)
		if err == nil && existing.ID.Hex() != id {
			return nil, apperr.ErrEmailTaken
		} else if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		changes.Email = &email
	}
	if req.Password != nil {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		changes.Password = &hashed
	}

	if err := s.users.UpdateUser(ctx, id, changes); err != nil {
		return nil, err
	}
	return s.users.GetUserByID(ctx, id)
}

// Delete removes another user's account. Admins cannot delete themselves.
// Posts and comments by the user are kept and render without an author.
func (s *UserService) Delete(ctx context.Context, actor models.Identity, id string) error {
	if !policy.CanManageUsers(actor) {
		return apperr.Forbiddenf("the user doesn't have enough privileges")
	}
	if actor.ID == id {
		return apperr.ErrDeleteSelf
	}
	deleted, err := s.users.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.ErrUserNotFound
	}
	return nil
}
