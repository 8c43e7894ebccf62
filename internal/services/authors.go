package services

import (
	"context"
	"errors"

	"github.com/anonto42/quill/backend/internal/apperr"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/repositories"
)

// authorLookup resolves author ids to public profiles for the duration of
// one read, so a thread by a single author costs one user query.
type authorLookup struct {
	users repositories.UserRepository
	seen  map[string]*models.UserPublic
}

func newAuthorLookup(users repositories.UserRepository) *authorLookup {
	return &authorLookup{users: users, seen: make(map[string]*models.UserPublic)}
}

// get returns nil for an author that no longer exists.
func (a *authorLookup) get(ctx context.Context, id string) (*models.UserPublic, error) {
	if pub, ok := a.seen[id]; ok {
		return pub, nil
	}
	user, err := a.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			a.seen[id] = nil
			return nil, nil
		}
		return nil, err
	}
	pub := user.Public()
	a.seen[id] = pub
	return pub, nil
}
