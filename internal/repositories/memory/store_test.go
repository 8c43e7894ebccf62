package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/quill/backend/internal/apperr"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/query"
	"github.com/anonto42/quill/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestPostRepository(t *testing.T) {
	repo := NewPostRepository()
	ctx := context.Background()

	older := &models.Post{Title: "Older", Slug: "older", Status: models.StatusPublished, AuthorID: "a", Tags: []string{"go"}, CreatedAt: t0}
	newer := &models.Post{Title: "Newer", Slug: "newer", Status: models.StatusDraft, AuthorID: "b", CreatedAt: t0.Add(time.Hour)}
	require.NoError(t, repo.CreatePost(ctx, older))
	require.NoError(t, repo.CreatePost(ctx, newer))

	err := repo.CreatePost(ctx, &models.Post{Slug: "older"})
	assert.ErrorIs(t, err, apperr.ErrDuplicateSlug)

	all, err := repo.FindPosts(ctx, query.NewFilter(), query.NewPage(0, 0, 10))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Newer", all[0].Title)

	tagged, err := repo.FindPosts(ctx, query.NewFilter().Eq("tags", "go").Eq("status", "published"), query.NewPage(0, 0, 10))
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, older.ID, tagged[0].ID)

	n, err := repo.CountPosts(ctx, query.NewFilter().Eq("author_id", "b"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// callers cannot mutate stored state through returned values
	got, err := repo.GetPostBySlug(ctx, "older")
	require.NoError(t, err)
	got.Tags[0] = "mutated"
	again, err := repo.GetPostByID(ctx, older.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, again.Tags)

	err = repo.UpdatePost(ctx, newer.ID.Hex(), models.PostChanges{Slug: &older.Slug})
	assert.ErrorIs(t, err, apperr.ErrDuplicateSlug)

	ok, err := repo.DeletePost(ctx, older.ID.Hex())
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.DeletePost(ctx, older.ID.Hex())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCommentRepository(t *testing.T) {
	repo := NewCommentRepository()
	ctx := context.Background()

	root := &models.Comment{PostID: "p1", Content: "root", CreatedAt: t0}
	require.NoError(t, repo.CreateComment(ctx, root))
	rootID := root.ID.Hex()

	// same timestamp: insertion order breaks the tie
	a := &models.Comment{PostID: "p1", ParentID: &rootID, Content: "a", CreatedAt: t0.Add(time.Minute)}
	b := &models.Comment{PostID: "p1", ParentID: &rootID, Content: "b", CreatedAt: t0.Add(time.Minute)}
	require.NoError(t, repo.CreateComment(ctx, a))
	require.NoError(t, repo.CreateComment(ctx, b))
	require.NoError(t, repo.CreateComment(ctx, &models.Comment{PostID: "p2", Content: "other", CreatedAt: t0}))

	replies, err := repo.FindReplies(ctx, rootID)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, "a", replies[0].Content)
	assert.Equal(t, "b", replies[1].Content)

	ids, err := repo.FindReplyIDs(ctx, rootID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID.Hex(), b.ID.Hex()}, ids)

	roots, err := repo.FindComments(ctx, query.NewFilter().Eq("post_id", "p1").Null("parent_id"), query.NewPage(0, 0, 10), repositories.NewestFirst)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, root.ID, roots[0].ID)

	n, err := repo.CountComments(ctx, query.NewFilter().Eq("post_id", "p1"))
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	require.NoError(t, repo.UpdateCommentContent(ctx, a.ID.Hex(), "edited", t0.Add(time.Hour)))
	got, err := repo.GetCommentByID(ctx, a.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)
	assert.ErrorIs(t, repo.UpdateCommentContent(ctx, "missing", "x", t0), apperr.ErrCommentNotFound)

	removed, err := repo.DeleteCommentsByPost(ctx, "p1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, removed)
	assert.Len(t, repo.All(), 1)
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	alice := &models.User{Username: "alice", Email: "alice@example.com", Role: models.RoleUser, CreatedAt: t0}
	ed := &models.User{Username: "ed", Email: "ed@example.com", Role: models.RoleEditor, CreatedAt: t0.Add(time.Second)}
	require.NoError(t, repo.CreateUser(ctx, alice))
	require.NoError(t, repo.CreateUser(ctx, ed))

	assert.ErrorIs(t, repo.CreateUser(ctx, &models.User{Username: "x", Email: "alice@example.com"}), apperr.ErrEmailTaken)
	assert.ErrorIs(t, repo.CreateUser(ctx, &models.User{Username: "ed", Email: "new@example.com"}), apperr.ErrUsernameTaken)

	byEmail, err := repo.GetUserByEmail(ctx, "ed@example.com")
	require.NoError(t, err)
	assert.Equal(t, ed.ID, byEmail.ID)

	editors, err := repo.FindUsers(ctx, query.NewFilter().Eq("role", "editor"), query.NewPage(0, 0, 10))
	require.NoError(t, err)
	require.Len(t, editors, 1)
	assert.Equal(t, "ed", editors[0].Username)

	taken := "ed@example.com"
	assert.ErrorIs(t, repo.UpdateUser(ctx, alice.ID.Hex(), models.UserChanges{Email: &taken}), apperr.ErrEmailTaken)

	ok, err := repo.DeleteUser(ctx, alice.ID.Hex())
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = repo.GetUserByID(ctx, alice.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestCommentRepositoryConcurrentAccess(t *testing.T) {
	repo := NewCommentRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := &models.Comment{PostID: "p1", Content: "x", CreatedAt: t0}
			if err := repo.CreateComment(ctx, c); err == nil {
				_, _ = repo.DeleteComment(ctx, c.ID.Hex())
			}
			_, _ = repo.CountComments(ctx, query.NewFilter().Eq("post_id", "p1"))
		}()
	}
	wg.Wait()

	assert.Empty(t, repo.All())
}

func TestFindWithOffsetPastEnd(t *testing.T) {
	ctx := context.Background()
	posts := NewPostRepository()
	comments := NewCommentRepository()
	users := NewUserRepository()
	require.NoError(t, posts.CreatePost(ctx, &models.Post{Slug: "only", CreatedAt: t0}))
	require.NoError(t, comments.CreateComment(ctx, &models.Comment{PostID: "p1", Content: "c", CreatedAt: t0}))
	require.NoError(t, users.CreateUser(ctx, &models.User{Username: "u", Email: "u@example.com", CreatedAt: t0}))

	for _, rawOffset := range []string{"1", "9223372036854775807"} {
		page := query.ParsePage("10", rawOffset, 10)

		assert.NotPanics(t, func() {
			got, err := posts.FindPosts(ctx, query.NewFilter(), page)
			require.NoError(t, err)
			assert.Empty(t, got)

			replies, err := comments.FindComments(ctx, query.NewFilter(), page, repositories.NewestFirst)
			require.NoError(t, err)
			assert.Empty(t, replies)

			found, err := users.FindUsers(ctx, query.NewFilter(), page)
			require.NoError(t, err)
			assert.Empty(t, found)
		}, "offset %s", rawOffset)
	}

	// a large limit near the end still returns the tail
	tail, err := posts.FindPosts(ctx, query.NewFilter(), query.NewPage(query.MaxLimit, 0, 10))
	require.NoError(t, err)
	assert.Len(t, tail, 1)
}
