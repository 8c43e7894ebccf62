package services

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/quill/backend/internal/apperr"
	"github.com/anonto42/quill/backend/internal/logger"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/policy"
	"github.com/anonto42/quill/backend/internal/query"
	"github.com/anonto42/quill/backend/internal/repositories"
)

// CommentTree is the part of the comment engine the post store depends on.
type CommentTree interface {
	DeleteAllForPost(ctx context.Context, postID string) (int64, error)
	CountForPost(ctx context.Context, postID string) (int64, error)
}

// PostService owns post lifecycle: slugs, summaries, listing and the
// cascade into the comment tree on delete.
type PostService struct {
	posts    repositories.PostRepository
	users    repositories.UserRepository
	comments CommentTree
	now      func() time.Time
}

// NewPostService creates a new PostService
func NewPostService(posts repositories.PostRepository, users repositories.UserRepository, comments CommentTree) *PostService {
	return &PostService{
		posts:    posts,
		users:    users,
		comments: comments,
		now:      now,
	}
}

// Create stores a new post written by authorID. Without an explicit slug one
// is derived from the title; without a summary one is cut from the content.
func (s *PostService) Create(ctx context.Context, req models.CreatePostRequest, authorID string) (*models.Post, error) {
	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Title)
	}
	if !IsValidSlug(slug) {
		return nil, apperr.ErrInvalidSlug
	}
	if err := s.ensureSlugFree(ctx, slug); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.StatusDraft
	}
	if !status.Valid() {
		return nil, apperr.ErrInvalidStatus
	}

	summary := req.Summary
	if summary == "" {
		summary = Summarize(req.Content)
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	ts := s.now()
	post := &models.Post{
		Title:     req.Title,
		Content:   req.Content,
		Summary:   summary,
		Tags:      tags,
		Slug:      slug,
		Status:    status,
		AuthorID:  authorID,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, post.ID.Hex())
}

func (s *PostService) ensureSlugFree(ctx context.Context, slug string) error {
	_, err := s.posts.GetPostBySlug(ctx, slug)
	switch {
	case err == nil:
		return apperr.ErrDuplicateSlug
	case errors.Is(err, apperr.ErrNotFound):
		return nil
	default:
		return err
	}
}

// GetByID returns a post with its author and live comment count.
func (s *PostService) GetByID(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, newAuthorLookup(s.users), post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetBySlug returns a post by slug, hydrated like GetByID.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.posts.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, newAuthorLookup(s.users), post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) hydrate(ctx context.Context, authors *authorLookup, post *models.Post) error {
	author, err := authors.get(ctx, post.AuthorID)
	if err != nil {
		return err
	}
	post.Author = author

	count, err := s.comments.CountForPost(ctx, post.ID.Hex())
	if err != nil {
		return err
	}
	post.CommentsCount = count
	return nil
}

func postFilter(f models.PostFilters) query.Filter {
	status := f.Status
	if status == "" {
		status = models.StatusPublished
	}
	return query.NewFilter().
		Eq("status", string(status)).
		Eq("tags", f.Tag).
		Eq("author_id", f.AuthorID)
}

// List returns one page of posts, newest first, and the total number of
// posts matching the filters. Only published posts are listed unless
// filters.Status says otherwise.
func (s *PostService) List(ctx context.Context, filters models.PostFilters, page query.Page) ([]models.Post, int64, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, 0, apperr.ErrInvalidStatus
	}
	filter := postFilter(filters)

	posts, err := s.posts.FindPosts(ctx, filter, page)
	if err != nil {
		return nil, 0, err
	}
	authors := newAuthorLookup(s.users)
	for i := range posts {
		if err := s.hydrate(ctx, authors, &posts[i]); err != nil {
			return nil, 0, err
		}
	}

	total, err := s.posts.CountPosts(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// CountByAuthor counts a user's published posts.
func (s *PostService) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	return s.posts.CountPosts(ctx, postFilter(models.PostFilters{AuthorID: authorID}))
}

// Update applies a partial update on behalf of actor.
func (s *PostService) Update(ctx context.Context, id string, req models.UpdatePostRequest, actor models.Identity) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanEditPost(post, actor) {
		return nil, apperr.Forbiddenf("you do not have permission to update this post")
	}

	changes := models.PostChanges{
		Title:   req.Title,
		Summary: req.Summary,
		Tags:    req.Tags,
	}

	if req.Slug != nil {
		slug := *req.Slug
		if slug == "" {
			title := post.Title
			if req.Title != nil {
				title = *req.Title
			}
			slug = Slugify(title)
		}
		if !IsValidSlug(slug) {
			return nil, apperr.ErrInvalidSlug
		}
		if slug != post.Slug {
			if err := s.ensureSlugFree(ctx, slug); err != nil {
				return nil, err
			}
		}
		changes.Slug = &slug
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apperr.ErrInvalidStatus
		}
		changes.Status = req.Status
	}

	if req.Content != nil {
		changes.Content = req.Content
		if req.Summary == nil {
			summary := Summarize(*req.Content)
			changes.Summary = &summary
		}
	}

	changes.UpdatedAt = s.now()
	if err := s.posts.UpdatePost(ctx, id, changes); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a post and every comment on it. Comments go first so a
// failure never leaves comments pointing at a missing post; a second sweep
// after the post is gone catches comments written in between.
func (s *PostService) Delete(ctx context.Context, id string, actor models.Identity) error {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanDeletePost(post, actor) {
		return apperr.Forbiddenf("you do not have permission to delete this post")
	}

	if _, err := s.comments.DeleteAllForPost(ctx, id); err != nil {
		logger.ErrorContext(ctx, "failed to delete post comments", "post_id", id, "error", err)
		return apperr.Internalf("delete comments of post %s: %w", id, err)
	}

	deleted, err := s.posts.DeletePost(ctx, id)
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete post", "post_id", id, "error", err)
		return apperr.Internalf("delete post %s: %w", id, err)
	}
	if !deleted {
		logger.ErrorContext(ctx, "post vanished during delete", "post_id", id)
		return apperr.Internalf("post %s was removed concurrently", id)
	}

	late, err := s.comments.DeleteAllForPost(ctx, id)
	if err != nil {
		logger.ErrorContext(ctx, "late comment sweep failed", "post_id", id, "error", err)
		return apperr.Internalf("delete comments of post %s: %w", id, err)
	}
	if late > 0 {
		logger.WarnContext(ctx, "removed comments created during post delete", "post_id", id, "count", late)
	}
	return nil
}
