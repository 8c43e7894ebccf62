package memory

import (
	"context"
	"sync"
	"time"

	"github.com/anonto42/quill/backend/internal/apperr"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/query"
	"github.com/anonto42/quill/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository is an in-memory repositories.UserRepository.
type UserRepository struct {
	mu    sync.RWMutex
	seq   uint64
	users map[string]record[models.User]
}

var _ repositories.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]record[models.User])}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.users {
		if rec.val.Email == user.Email {
			return apperr.ErrEmailTaken
		}
		if rec.val.Username == user.Username {
			return apperr.ErrUsernameTaken
		}
	}
	user.ID = primitive.NewObjectID()
	r.seq++
	r.users[user.ID.Hex()] = record[models.User]{seq: r.seq, val: *user}
	return nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.users[id]
	if !ok {
		return nil, apperr.ErrUserNotFound
	}
	u := rec.val
	return &u, nil
}

func (r *UserRepository) find(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.users {
		if match(rec.val) {
			u := rec.val
			return &u, nil
		}
	}
	return nil, apperr.ErrUserNotFound
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *UserRepository) FindUsers(ctx context.Context, filter query.Filter, page query.Page) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var recs []record[models.User]
	for _, rec := range r.users {
		u := rec.val
		field := func(key string) any {
			if key == "role" {
				return string(u.Role)
			}
			return nil
		}
		if filter.Match(field) {
			recs = append(recs, rec)
		}
	}
	return ordered(recs, func(u models.User) time.Time { return u.CreatedAt }, false, &page), nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, id string, changes models.UserChanges) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.users[id]
	if !ok {
		return apperr.ErrUserNotFound
	}
	u := rec.val
	if changes.Email != nil && *changes.Email != u.Email {
		for otherID, other := range r.users {
			if otherID != id && other.val.Email == *changes.Email {
				return apperr.ErrEmailTaken
			}
		}
		u.Email = *changes.Email
	}
	if changes.FullName != nil {
		u.FullName = *changes.FullName
	}
	if changes.Bio != nil {
		u.Bio = *changes.Bio
	}
	if changes.Password != nil {
		u.Password = *changes.Password
	}
	if changes.Role != nil {
		u.Role = *changes.Role
	}
	if changes.IsActive != nil {
		u.IsActive = *changes.IsActive
	}
	u.UpdatedAt = changes.UpdatedAt
	r.users[id] = record[models.User]{seq: rec.seq, val: u}
	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}
