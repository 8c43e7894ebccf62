package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/quill/backend/internal/apperr"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/repositories"
)

// IdentityResolver turns a bearer token into the identity of a live account.
type IdentityResolver struct {
	tokens *TokenManager
	users  repositories.UserRepository
}

func NewIdentityResolver(tokens *TokenManager, users repositories.UserRepository) *IdentityResolver {
	return &IdentityResolver{tokens: tokens, users: users}
}

// Resolve fails with ErrUnauthorized for bad tokens and for accounts that
// were deleted or deactivated after the token was issued. The role is read
// from storage, not from the token, so demotions apply immediately.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (models.Identity, error) {
	claims, err := r.tokens.Parse(token)
	if err != nil {
		return models.Identity{}, err
	}

	user, err := r.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.Identity{}, fmt.Errorf("%w: could not validate credentials", apperr.ErrUnauthorized)
		}
		return models.Identity{}, err
	}
	if !user.IsActive {
		return models.Identity{}, fmt.Errorf("%w: account is inactive", apperr.ErrUnauthorized)
	}
	return user.Identity(), nil
}
