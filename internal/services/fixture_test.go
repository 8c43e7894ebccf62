package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/quill/backend/internal/auth"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/repositories/memory"
	"github.com/stretchr/testify/require"
)

// clock hands out strictly increasing timestamps.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	ctx      context.Context
	posts    *memory.PostRepository
	comments *memory.CommentRepository
	users    *memory.UserRepository

	postSvc    *PostService
	commentSvc *CommentService
	userSvc    *UserService
	tokens     *auth.TokenManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		ctx:      context.Background(),
		posts:    memory.NewPostRepository(),
		comments: memory.NewCommentRepository(),
		users:    memory.NewUserRepository(),
		tokens:   auth.NewTokenManager("test-secret", time.Hour),
	}
	c := newClock()
	f.commentSvc = NewCommentService(f.comments, f.posts, f.users)
	f.commentSvc.now = c.now
	f.postSvc = NewPostService(f.posts, f.users, f.commentSvc)
	f.postSvc.now = c.now
	f.userSvc = NewUserService(f.users, f.tokens, f.postSvc, f.commentSvc)
	f.userSvc.now = c.now
	return f
}

func (f *fixture) user(t *testing.T, username string, role models.Role) models.Identity {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: username + " tester",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, f.users.CreateUser(f.ctx, u))
	return u.Identity()
}

func (f *fixture) post(t *testing.T, author models.Identity, title string, status models.PostStatus) *models.Post {
	t.Helper()
	p, err := f.postSvc.Create(f.ctx, models.CreatePostRequest{
		Title:   title,
		Content: "Content of " + title,
		Status:  status,
	}, author.ID)
	require.NoError(t, err)
	return p
}

func (f *fixture) comment(t *testing.T, author models.Identity, postID string, parent *models.Comment, content string) *models.Comment {
	t.Helper()
	req := models.CreateCommentRequest{PostID: postID, Content: content}
	if parent != nil {
		id := parent.ID.Hex()
		req.ParentID = &id
	}
	c, err := f.commentSvc.Create(f.ctx, req, author.ID)
	require.NoError(t, err)
	return c
}

func (f *fixture) countForPost(t *testing.T, postID string) int64 {
	t.Helper()
	n, err := f.commentSvc.CountForPost(f.ctx, postID)
	require.NoError(t, err)
	return n
}
