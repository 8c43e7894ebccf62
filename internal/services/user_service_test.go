package services

import (
	"testing"

	"github.com/anonto42/quill/backend/internal/apperr"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, f *fixture, username string) *models.User {
	t.Helper()
	u, err := f.userSvc.Register(f.ctx, models.CreateUserRequest{
		Username: username,
		Email:    username + "@Example.com",
		Password: "correct horse",
		FullName: "Test " + username,
	})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	u := register(t, f, "alice")

	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "correct horse", u.Password)

	_, err := f.userSvc.Register(f.ctx, models.CreateUserRequest{Username: "alice2", Email: "ALICE@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, apperr.ErrEmailTaken)

	_, err = f.userSvc.Register(f.ctx, models.CreateUserRequest{Username: "alice", Email: "other@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, apperr.ErrUsernameTaken)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	u := register(t, f, "alice")

	token, err := f.userSvc.Login(f.ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)

	claims, err := f.tokens.Parse(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.Subject)

	_, err = f.userSvc.Login(f.ctx, "alice@example.com", "wrong password")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, err = f.userSvc.Login(f.ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	inactive := false
	require.NoError(t, f.users.UpdateUser(f.ctx, u.ID.Hex(), models.UserChanges{IsActive: &inactive}))
	_, err = f.userSvc.Login(f.ctx, "alice@example.com", "correct horse")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestUpdateSelf(t *testing.T) {
	f := newFixture(t)
	u := register(t, f, "alice")
	me := u.Identity()

	admin := models.RoleAdmin
	_, err := f.userSvc.UpdateSelf(f.ctx, me, models.UpdateUserRequest{Role: &admin})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	active := true
	_, err = f.userSvc.UpdateSelf(f.ctx, me, models.UpdateUserRequest{IsActive: &active})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	stored, err := f.userSvc.GetByID(f.ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, stored.Role)

	bio := "writes about Go"
	password := "a new password"
	updated, err := f.userSvc.UpdateSelf(f.ctx, me, models.UpdateUserRequest{Bio: &bio, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)

	_, err = f.userSvc.Login(f.ctx, "alice@example.com", password)
	assert.NoError(t, err)

	register(t, f, "bob")
	taken := "bob@example.com"
	_, err = f.userSvc.UpdateSelf(f.ctx, me, models.UpdateUserRequest{Email: &taken})
	assert.ErrorIs(t, err, apperr.ErrEmailTaken)
}

func TestAdminUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	alice := register(t, f, "alice").Identity()
	bob := register(t, f, "bob").Identity()
	root := f.user(t, "root", models.RoleAdmin)

	editor := models.RoleEditor
	_, err := f.userSvc.Update(f.ctx, alice, bob.ID, models.UpdateUserRequest{Role: &editor})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	updated, err := f.userSvc.Update(f.ctx, root, bob.ID, models.UpdateUserRequest{Role: &editor})
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, updated.Role)

	bogus := models.Role("owner")
	_, err = f.userSvc.Update(f.ctx, root, bob.ID, models.UpdateUserRequest{Role: &bogus})
	assert.ErrorIs(t, err, apperr.ErrInvalidRole)

	_, err = f.userSvc.Update(f.ctx, root, "65f000000000000000000000", models.UpdateUserRequest{})
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)

	assert.ErrorIs(t, f.userSvc.Delete(f.ctx, alice, bob.ID), apperr.ErrForbidden)
	assert.ErrorIs(t, f.userSvc.Delete(f.ctx, root, root.ID), apperr.ErrDeleteSelf)

	require.NoError(t, f.userSvc.Delete(f.ctx, root, bob.ID))
	_, err = f.userSvc.GetByID(f.ctx, bob.ID)
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
	assert.ErrorIs(t, f.userSvc.Delete(f.ctx, root, bob.ID), apperr.ErrUserNotFound)
}

func TestDeletedAuthorRendersWithoutProfile(t *testing.T) {
	f := newFixture(t)
	alice := register(t, f, "alice").Identity()
	root := f.user(t, "root", models.RoleAdmin)
	p := f.post(t, alice, "Orphaned", models.StatusPublished)

	require.NoError(t, f.userSvc.Delete(f.ctx, root, alice.ID))

	got, err := f.postSvc.GetByID(f.ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Nil(t, got.Author)
}

func TestUserStatsAndList(t *testing.T) {
	f := newFixture(t)
	alice := register(t, f, "alice").Identity()
	f.user(t, "ed", models.RoleEditor)
	p := f.post(t, alice, "Public", models.StatusPublished)
	f.post(t, alice, "Private", models.StatusDraft)
	f.comment(t, alice, p.ID.Hex(), nil, "one")
	f.comment(t, alice, p.ID.Hex(), nil, "two")

	stats, err := f.userSvc.Stats(f.ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.PostsCount)
	assert.EqualValues(t, 2, stats.CommentsCount)
	assert.Equal(t, "alice", stats.Username)

	_, err = f.userSvc.Stats(f.ctx, "65f000000000000000000000")
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)

	page := query.NewPage(0, 0, query.DefaultUserLimit)
	all, err := f.userSvc.List(f.ctx, "", page)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	editors, err := f.userSvc.List(f.ctx, models.RoleEditor, page)
	require.NoError(t, err)
	require.Len(t, editors, 1)
	assert.Equal(t, "ed", editors[0].Username)

	_, err = f.userSvc.List(f.ctx, "owner", page)
	assert.ErrorIs(t, err, apperr.ErrInvalidRole)
}
